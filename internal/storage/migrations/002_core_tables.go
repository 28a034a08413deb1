package migrations

import "gorm.io/gorm"

// migration002Up creates all core tables using GORM AutoMigrate
func migration002Up(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// migration002Down drops all core tables
func migration002Down(db *gorm.DB) error {
	tables := []string{
		"election_reports",
		"election_results",
		"voter_election_status",
		"votes",
		"candidates",
		"elections",
		"voters",
		"aadhar_registry",
		"voter_id_registry",
	}

	for _, table := range tables {
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
