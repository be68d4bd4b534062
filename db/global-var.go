package db

const (
	ConstLayoutDateTime = `2006-01-02 15:04`
	ConstLayoutDate     = `2006-01-02`
)
