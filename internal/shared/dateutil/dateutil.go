package dateutil

import "time"

// DateOf memotong komponen jam dan menormalkan ke tengah malam UTC,
// sehingga tanggal bisa dibandingkan langsung dengan kolom DATE.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDate mengembalikan tanggal kalender "hari ini" menurut zona waktu perusahaan.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	return DateOf(t.In(loc))
}

// Key renders a date as its canonical map/cache key.
func Key(t time.Time) string {
	return t.Format("2006-01-02")
}

// Parse parses a YYYY-MM-DD string into a normalized date.
func Parse(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}
