package migrations

import "gorm.io/gorm"

// migration003Up creates performance indexes
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_voters_email ON voters(email)",
		"CREATE INDEX IF NOT EXISTS idx_voters_role ON voters(role)",
		"CREATE INDEX IF NOT EXISTS idx_voters_location ON voters(state, city)",

		// Partial unique indexes: each ID proof number may register only
		// one voter, but the column stays empty for voters who presented
		// the other proof type, so '' must not count as a duplicate.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_voters_aadhar_number ON voters(aadhar_number) WHERE aadhar_number <> ''",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_voters_voter_id_number ON voters(voter_id_number) WHERE voter_id_number <> ''",

		"CREATE INDEX IF NOT EXISTS idx_elections_status ON elections(status)",
		"CREATE INDEX IF NOT EXISTS idx_elections_type ON elections(type)",
		"CREATE INDEX IF NOT EXISTS idx_elections_dates ON elections(start_date, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_elections_published ON elections(result_published)",
		"CREATE INDEX IF NOT EXISTS idx_elections_created_at ON elections(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_candidates_election ON candidates(election_id)",
		"CREATE INDEX IF NOT EXISTS idx_candidates_voter ON candidates(voter_id)",

		"CREATE INDEX IF NOT EXISTS idx_votes_election ON votes(election_id)",
		"CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(candidate_id)",
		"CREATE INDEX IF NOT EXISTS idx_votes_voted_at ON votes(voted_at)",

		"CREATE INDEX IF NOT EXISTS idx_status_election ON voter_election_status(election_id)",
		"CREATE INDEX IF NOT EXISTS idx_status_voter ON voter_election_status(voter_id)",

		"CREATE INDEX IF NOT EXISTS idx_results_election ON election_results(election_id)",
		"CREATE INDEX IF NOT EXISTS idx_results_rank ON election_results(election_id, rank_position)",

		"CREATE INDEX IF NOT EXISTS idx_reports_election ON election_reports(election_id)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops performance indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"idx_voters_email",
		"idx_voters_role",
		"idx_voters_location",
		"idx_voters_aadhar_number",
		"idx_voters_voter_id_number",
		"idx_elections_status",
		"idx_elections_type",
		"idx_elections_dates",
		"idx_elections_published",
		"idx_elections_created_at",
		"idx_candidates_election",
		"idx_candidates_voter",
		"idx_votes_election",
		"idx_votes_candidate",
		"idx_votes_voted_at",
		"idx_status_election",
		"idx_status_voter",
		"idx_results_election",
		"idx_results_rank",
		"idx_reports_election",
	}

	for _, index := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return err
		}
	}

	return nil
}
