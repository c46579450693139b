package warehouse

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// sampleSession is one row of the flat_sessions sample.
type sampleSession struct {
	id, user, date string
	ts             int64
	pageviews      int
	purchases      int
	country        string
	device         string
	platform       string
	source         string
	campaign       string
}

var sampleSessions = []sampleSession{
	{"s01", "u1", "2025-05-02", 1746172800000000, 1, 0, "France", "desktop", "web", "organic", "spring_sale"},
	{"s02", "u1", "2025-05-03", 1746259200000000, 4, 1, "France", "desktop", "web", "organic", "spring_sale"},
	{"s03", "u2", "2025-05-05", 1746432000000000, 2, 0, "Spain", "mobile", "web", "cpc", "brand"},
	{"s04", "u3", "2025-05-09", 1746777600000000, 1, 0, "Spain", "mobile", "android", "referral", ""},
	{"s05", "u4", "2025-05-14", 1747209600000000, 6, 2, "United Arab Emirates", "desktop", "web", "email", "newsletter"},
	{"s06", "u5", "2025-05-20", 1747728000000000, 3, 0, "France", "tablet", "ios", "organic", ""},
	{"s07", "u6", "2025-05-28", 1748419200000000, 1, 0, "Germany", "mobile", "ios", "cpc", "brand"},
	{"s08", "u2", "2025-06-02", 1748851200000000, 5, 1, "Spain", "desktop", "web", "organic", "spring_sale"},
	{"s09", "u7", "2025-06-10", 1749542400000000, 2, 0, "Germany", "mobile", "android", "referral", ""},
	{"s10", "u8", "2025-06-12", 1749715200000000, 1, 0, "France", "mobile", "web", "organic", ""},
}

var samplePages = []struct{ date, title string }{
	{"20250502", "Home"}, {"20250503", "Home"}, {"20250503", "Pricing"},
	{"20250505", "Blog"}, {"20250514", "Pricing"}, {"20250514", "Checkout"},
	{"20250520", "Home"}, {"20250602", "Checkout"}, {"20250610", "Blog"},
}

var sampleConversions = []struct {
	date, country string
	value         float64
}{
	{"20250503", "France", 120.5}, {"20250514", "United Arab Emirates", 80},
	{"20250514", "United Arab Emirates", 45.25}, {"20250602", "Spain", 60},
}

// CreateSampleTables creates and fills flat_sessions, flat_pages and
// flat_conversions under the `project.dataset.table` names the catalog
// renders. Existing sample tables are replaced.
func (s *SQLite) CreateSampleTables(ctx context.Context, project, dataset string) error {
	name := func(table string) string {
		return fmt.Sprintf("`%s.%s.%s`", project, dataset, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin sample load")
	}
	defer tx.Rollback()

	ddl := []string{
		"DROP TABLE IF EXISTS " + name("flat_sessions"),
		"DROP TABLE IF EXISTS " + name("flat_pages"),
		"DROP TABLE IF EXISTS " + name("flat_conversions"),
		`CREATE TABLE ` + name("flat_sessions") + ` (
			session_id TEXT PRIMARY KEY,
			user_pseudo_id TEXT NOT NULL,
			session_start_date TEXT NOT NULL,
			session_start_ts INTEGER NOT NULL,
			pageviews INTEGER NOT NULL,
			purchases INTEGER NOT NULL,
			country TEXT,
			device_category TEXT,
			platform TEXT,
			traffic_source TEXT,
			campaign_name TEXT
		)`,
		`CREATE TABLE ` + name("flat_pages") + ` (
			event_date TEXT NOT NULL,
			page_title TEXT NOT NULL
		)`,
		`CREATE TABLE ` + name("flat_conversions") + ` (
			event_date TEXT NOT NULL,
			country TEXT,
			purchase_value REAL NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "sample ddl")
		}
	}

	for _, r := range sampleSessions {
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+name("flat_sessions")+" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			r.id, r.user, r.date, r.ts, r.pageviews, r.purchases, r.country, r.device, r.platform, r.source, r.campaign); err != nil {
			return errors.Wrap(err, "insert sample session")
		}
	}
	for _, r := range samplePages {
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+name("flat_pages")+" VALUES (?, ?)", r.date, r.title); err != nil {
			return errors.Wrap(err, "insert sample page")
		}
	}
	for _, r := range sampleConversions {
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+name("flat_conversions")+" VALUES (?, ?, ?)", r.date, r.country, r.value); err != nil {
			return errors.Wrap(err, "insert sample conversion")
		}
	}

	return tx.Commit()
}
