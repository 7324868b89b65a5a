package config

// Settings is the part of the configuration that clients may read, so that a
// front end can pre-fill the loan period and pick its language.
type Settings struct {
	DefaultLoanDays int    `json:"default_loan_days"`
	DisplayLanguage string `json:"display_language"`
}

type Service struct {
	config *Config
}

func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

func (s *Service) RetrieveSettings() *Settings {
	return &Settings{
		DefaultLoanDays: s.config.DefaultLoanDays,
		DisplayLanguage: s.config.DisplayLanguage,
	}
}
