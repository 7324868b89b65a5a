package i18n

var labels = map[string]map[string]string{
	English: {
		"library_management_system": "Library Management System",
		"add_book":                  "Add Book",
		"add_member":                "Add Member",
		"borrow_book":               "Borrow Book",
		"return_book":               "Return Book",
		"view_books":                "View Books",
		"settings":                  "Settings",
		"id":                        "ID",
		"name":                      "Name",
		"email":                     "Email",
		"title":                     "Title",
		"author":                    "Author",
		"available":                 "Available",
		"return_date":               "Return Date",
		"borrowed_by":               "Borrowed By",
		"overdue":                   "Overdue",
		"search_by_title":           "Search by Title",
		"select_member":             "Select Member",
		"days_prompt":               "How many days would you like to borrow the book?",
		"borrowing_period":          "Enter Borrowing Period (days):",
		"book_added":                "Book added successfully!",
		"member_added":              "Member added!",
		"book_borrowed":             "Book borrowed! Return it by {0}.",
		"book_returned":             "Book returned! {0} available.",
		"no_results":                "Nothing found.",
		"error_validation_error":    "Invalid input: {0}",
		"error_duplicate":           "Already registered: {0}",
		"error_unavailable":         "No copies available: {0}",
		"error_not_found":           "Not found: {0}",
		"error_storage_error":       "The library database could not be reached: {0}",
		"error_unknown":             "Something went wrong: {0}",
	},
	Turkish: {
		"library_management_system": "Kütüphane Yönetici Sistemi",
		"add_book":                  "Kitap Ekle",
		"add_member":                "Üye Ekle",
		"borrow_book":               "Kitap Ödünç Al",
		"return_book":               "Kitap İade Et",
		"view_books":                "Kitapları Gör",
		"settings":                  "Ayarlar",
		"id":                        "No",
		"name":                      "Ad",
		"email":                     "E-posta",
		"title":                     "Başlık",
		"author":                    "Yazar",
		"available":                 "Müsaitlik",
		"return_date":               "İade Edilecek Tarih",
		"borrowed_by":               "Ödünç Alan",
		"overdue":                   "Gecikmiş",
		"search_by_title":           "Başlık ile ara",
		"select_member":             "Üye Seç",
		"days_prompt":               "Kitabı kaç gün almak istersiniz?",
		"borrowing_period":          "Ödünç Alınacak Gün Sayısı",
		"book_added":                "Kitap başarıyla eklendi!",
		"member_added":              "Üye başarıyla eklendi!",
		"book_borrowed":             "Kitap ödünç alındı! İade tarihi: {0}.",
		"book_returned":             "Kitap iade edildi! Müsait: {0}.",
		"no_results":                "Sonuç bulunamadı.",
		"error_validation_error":    "Geçersiz giriş: {0}",
		"error_duplicate":           "Zaten kayıtlı: {0}",
		"error_unavailable":         "Müsait kopya yok: {0}",
		"error_not_found":           "Bulunamadı: {0}",
		"error_storage_error":       "Kütüphane veritabanına ulaşılamadı: {0}",
		"error_unknown":             "Bir şeyler ters gitti: {0}",
	},
}
