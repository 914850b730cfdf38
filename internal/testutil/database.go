package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests are skipped when
// no MySQL instance named 'evdms_test' is reachable on localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/evdms_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"Installments", "InstallmentPlans", "Payments", "Orders", "QuoteItems", "Quotes", "VehicleStock"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the repositories expect.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createQuotesTable := `
	CREATE TABLE IF NOT EXISTS Quotes (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED,
		creatorRole VARCHAR(50) NOT NULL DEFAULT '',
		ownerId INT UNSIGNED NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'DRAFT',
		approvalStatus VARCHAR(50) NOT NULL DEFAULT 'DRAFT',
		approvedBy INT UNSIGNED,
		approvalNotes VARCHAR(500),
		rejectedReason VARCHAR(500),
		finalTotal DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		invChecked TINYINT(1) NOT NULL DEFAULT 0,
		invSufficient TINYINT(1) NOT NULL DEFAULT 0,
		invMessage VARCHAR(500),
		invCheckedAt DATETIME,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_approval (approvalStatus),
		INDEX idx_creator (creatorRole)
	)`

	createQuoteItemsTable := `
	CREATE TABLE IF NOT EXISTS QuoteItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		quoteId INT UNSIGNED NOT NULL,
		vehicleId INT NOT NULL,
		quantity INT NOT NULL,
		unitPrice DECIMAL(12,2) NOT NULL,
		INDEX idx_quote (quoteId)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		quoteId INT UNSIGNED NOT NULL UNIQUE,
		customerId INT UNSIGNED,
		track VARCHAR(50) NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'PENDING',
		approvalStatus VARCHAR(50) NOT NULL DEFAULT 'PENDING_APPROVAL',
		approvedBy INT UNSIGNED,
		rejectedReason VARCHAR(500),
		totalAmount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_approval (approvalStatus)
	)`

	createPaymentsTable := `
	CREATE TABLE IF NOT EXISTS Payments (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		method VARCHAR(50) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'PENDING',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_order (orderId)
	)`

	createInstallmentPlansTable := `
	CREATE TABLE IF NOT EXISTS InstallmentPlans (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		paymentId INT UNSIGNED NOT NULL UNIQUE,
		principal DECIMAL(12,2) NOT NULL,
		annualRate DECIMAL(6,3) NOT NULL DEFAULT 0.000,
		vatAmount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		interestAmount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		totalPayable DECIMAL(12,2) NOT NULL,
		monthlyPayment DECIMAL(12,2) NOT NULL,
		months INT NOT NULL,
		firstDueDate DATETIME NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createInstallmentsTable := `
	CREATE TABLE IF NOT EXISTS Installments (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		planId INT UNSIGNED NOT NULL,
		installmentNumber INT NOT NULL,
		dueDate DATETIME NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'PENDING',
		paidAt DATETIME,
		UNIQUE KEY uq_plan_number (planId, installmentNumber)
	)`

	createVehicleStockTable := `
	CREATE TABLE IF NOT EXISTS VehicleStock (
		vehicleId INT NOT NULL,
		location VARCHAR(50) NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		reserved INT NOT NULL DEFAULT 0,
		PRIMARY KEY (vehicleId, location)
	)`

	statements := []string{
		createQuotesTable,
		createQuoteItemsTable,
		createOrdersTable,
		createPaymentsTable,
		createInstallmentPlansTable,
		createInstallmentsTable,
		createVehicleStockTable,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test table: %v", err)
		}
	}
}
