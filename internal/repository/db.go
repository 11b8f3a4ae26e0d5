package repository

// scanner covers both *sql.Row and *sql.Rows so the scan helpers can serve
// single and multi-row queries alike.
type scanner interface {
	Scan(dest ...any) error
}
