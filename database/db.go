package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/leadgrid/leadgrid/internal/cache"

	"github.com/google/uuid"

	"github.com/leadgrid/leadgrid/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Cache: nil} // or Cache: newCache if cache is used
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createSchema(db)
	if err != nil {
		return nil, err
	}
	err = createIdentityTable(db)
	if err != nil {
		return nil, err
	}
	err = createBusinessTable(db)
	if err != nil {
		return nil, err
	}
	err = createKeywordTable(db)
	if err != nil {
		return nil, err
	}
	err = createLeadTable(db)
	if err != nil {
		return nil, err
	}
	err = createResponseTable(db)
	if err != nil {
		return nil, err
	}
	err = createPaymentTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	// Generate a new UUID
	id := uuid.New()

	// Convert the UUID to a string
	uuidStr := id.String()

	// Add the module suffix
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)

	return idWithSuffix
}

// createSchema sets up the leadgrid schema and the extensions the spatial
// queries depend on. cube/earthdistance back GetBusinessesWithinRadius.
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE SCHEMA IF NOT EXISTS leadgrid;
		CREATE EXTENSION IF NOT EXISTS cube;
		CREATE EXTENSION IF NOT EXISTS earthdistance;
	`)
	return err
}

func createIdentityTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.identities (
			id SERIAL PRIMARY KEY,
			identity_id TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			email_address TEXT,
			phone_number TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createBusinessTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.businesses (
			id SERIAL PRIMARY KEY,
			business_id TEXT NOT NULL UNIQUE,
			provider_id TEXT NOT NULL REFERENCES leadgrid.identities(identity_id),
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			street TEXT,
			city TEXT,
			state TEXT,
			country TEXT,
			longitude FLOAT8 NOT NULL,
			latitude FLOAT8 NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			listing_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_businesses_location
			ON leadgrid.businesses USING gist (ll_to_earth(latitude, longitude));
		CREATE INDEX IF NOT EXISTS idx_businesses_provider
			ON leadgrid.businesses (provider_id)
	`)
	return err
}

func createKeywordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.keywords (
			id SERIAL PRIMARY KEY,
			keyword_id TEXT NOT NULL UNIQUE,
			keyword TEXT NOT NULL,
			business_id TEXT NOT NULL REFERENCES leadgrid.businesses(business_id),
			provider_id TEXT NOT NULL REFERENCES leadgrid.identities(identity_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (keyword, business_id)
		)
	`)
	return err
}

func createLeadTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.leads (
			id SERIAL PRIMARY KEY,
			lead_id TEXT NOT NULL UNIQUE,
			seeker_id TEXT NOT NULL REFERENCES leadgrid.identities(identity_id),
			search_text TEXT NOT NULL,
			description TEXT,
			longitude FLOAT8 NOT NULL,
			latitude FLOAT8 NOT NULL,
			address TEXT,
			city TEXT,
			state TEXT,
			country TEXT,
			radius_meters INTEGER NOT NULL DEFAULT 15000,
			matched_keywords TEXT[] NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'PENDING',
			total_notified INTEGER NOT NULL DEFAULT 0,
			total_accepted INTEGER NOT NULL DEFAULT 0,
			total_rejected INTEGER NOT NULL DEFAULT 0,
			total_pending INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	return err
}

func createResponseTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.responses (
			id SERIAL PRIMARY KEY,
			response_id TEXT NOT NULL UNIQUE,
			lead_id TEXT NOT NULL REFERENCES leadgrid.leads(lead_id),
			provider_id TEXT NOT NULL REFERENCES leadgrid.identities(identity_id),
			business_id TEXT NOT NULL REFERENCES leadgrid.businesses(business_id),
			matched_keywords TEXT[] NOT NULL DEFAULT '{}',
			distance_meters FLOAT8 NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT 'PENDING',
			notes TEXT,
			responded_at TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (lead_id, provider_id)
		);
		CREATE INDEX IF NOT EXISTS idx_responses_provider
			ON leadgrid.responses (provider_id);
		CREATE INDEX IF NOT EXISTS idx_responses_expiry
			ON leadgrid.responses (expires_at) WHERE state = 'PENDING'
	`)
	return err
}

func createPaymentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leadgrid.payments (
			id SERIAL PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			response_id TEXT NOT NULL REFERENCES leadgrid.responses(response_id),
			provider_id TEXT NOT NULL REFERENCES leadgrid.identities(identity_id),
			order_ref TEXT NOT NULL,
			payment_ref TEXT,
			signature TEXT,
			amount BIGINT NOT NULL,
			currency TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'CREATED',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_active_response
			ON leadgrid.payments (response_id) WHERE state != 'FAILED'
	`)
	return err
}
