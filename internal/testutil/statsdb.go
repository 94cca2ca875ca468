// Package testutil builds throwaway statistics databases for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE market_overview (metric TEXT, value REAL);
CREATE TABLE top10_volatility (symbol TEXT, Volatility REAL);
CREATE TABLE sector_returns (symbol TEXT, sector TEXT, "Average Yearly Return (%)" REAL);
CREATE TABLE cumulative_returns (symbol TEXT, date TIMESTAMP, cumulative_return REAL);
CREATE TABLE monthly_gainers_losers (year_month TEXT, symbol TEXT, monthly_return_pct REAL, type TEXT);
CREATE TABLE correlation_matrix (symbol TEXT, correlated_symbol TEXT, correlation REAL);
`

const seed = `
INSERT INTO market_overview VALUES
	('Total Stocks', 50), ('Average Price', 2345.678), ('Green Stocks', 30), ('Red Stocks', 20);

INSERT INTO top10_volatility VALUES
	('TCS', 0.012), ('ADANIENT', 0.041), ('INFY', 0.019), ('WIPRO', NULL);

INSERT INTO sector_returns VALUES
	('TCS', 'IT', 21.5), ('HDFC', 'Banking', 12.25), ('INFY', 'IT', 30.1), ('SBIN', 'Banking', -3.4);

INSERT INTO cumulative_returns VALUES
	('AAA', '2024-01-01 00:00:00', 0.10), ('AAA', '2024-01-02 00:00:00', 0.90), ('AAA', '2024-01-03 00:00:00', 0.50),
	('BBB', '2024-01-01 00:00:00', 0.20), ('BBB', '2024-01-02 00:00:00', 0.30),
	('CCC', '2024-01-01 00:00:00', 0.70),
	('DDD', '2024-01-01', 0.05),
	('EEE', '2024-01-02', 0.60),
	('FFF', '2024-01-03', 0.80);

INSERT INTO monthly_gainers_losers VALUES
	('2024-02', 'TCS', 8.5, 'gainer'), ('2024-02', 'SBIN', -6.25, 'loser'),
	('2023-12', 'INFY', 12.0, 'gainer'), ('2023-12', 'HDFC', -2.5, 'loser'), ('2023-12', 'WIPRO', 4.0, 'gainer');

INSERT INTO correlation_matrix VALUES
	('TCS', 'TCS', 1.0), ('TCS', 'INFY', 0.8), ('INFY', 'TCS', 0.8), ('INFY', 'INFY', 1.0),
	('HDFC', 'HDFC', 1.0), ('HDFC', 'TCS', -0.25), ('HDFC', 'TCS', -0.3);
`

// StatsDB writes a seeded statistics database into a temp dir and returns its path.
func StatsDB(t testing.TB) string {
	t.Helper()
	return build(t, schema+seed)
}

// StatsDBWith seeds a database and then runs extra against it.
func StatsDBWith(t testing.TB, extra string) string {
	t.Helper()
	return build(t, schema+seed+extra)
}

// EmptyStatsDB creates the six tables without rows.
func EmptyStatsDB(t testing.TB) string {
	t.Helper()
	return build(t, schema)
}

// DBWithout creates a seeded database and drops table from it.
func DBWithout(t testing.TB, table string) string {
	t.Helper()
	return build(t, schema+seed+"DROP TABLE "+table+";")
}

func build(t testing.TB, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock_analysis.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}
