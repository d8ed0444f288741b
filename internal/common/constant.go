// Package common contains the well-known keys, sheet names and sentinel
// errors shared by the intake client and the sheet emulator.
package common

// Durable local cache keys.
const (
	KeyApplications    = "oskolkiApplications"
	KeyHolidays        = "oskolkiHolidays"
	KeyVacancies       = "oskolkiVacancies"
	KeyVacanciesSeeded = "oskolkiVacanciesDefault"
	KeyChat            = "oskolkiChat"
	KeySession         = "oskolkiAuth"
	KeySessionExpiry   = "oskolkiAuthExpiry"
	KeySessionKey      = "oskolkiAuthKey"
	KeyUserEmail       = "oskolkiUserEmail"
	KeyLastApplication = "oskolkiLastApplication"
)

// Remote sheet names. The endpoint addresses collections by these labels.
const (
	SheetApplications = "Заявки"
	SheetHolidays     = "Праздники"
	SheetChat         = "Чат"
	SheetVacancies    = "Вакансии"
)

// DeleteMarker is the first element of a sentinel delete payload
// (["DELETE", id]).
const DeleteMarker = "DELETE"

// Fixed admin credential pair. This is a placeholder, not access control.
const (
	AdminEmail    = "admin@admin"
	AdminPassword = "admin@admin"
)
