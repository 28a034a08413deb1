package migrations

import "gorm.io/gorm"

// migration005Up creates analytical views for monitoring elections
func migration005Up(db *gorm.DB) error {
	views := []string{
		`CREATE VIEW election_turnout AS
        SELECT
            e.id as election_id,
            e.name as election_name,
            e.status as status,
            COUNT(DISTINCT c.id) as candidate_count,
            COUNT(DISTINCT v.id) as votes_cast,
            MIN(v.voted_at) as first_vote_at,
            MAX(v.voted_at) as last_vote_at
        FROM elections e
        LEFT JOIN candidates c ON c.election_id = e.id
        LEFT JOIN votes v ON v.election_id = e.id
        GROUP BY e.id, e.name, e.status`,

		`CREATE VIEW published_results AS
        SELECT
            e.id as election_id,
            e.name as election_name,
            r.candidate_id,
            c.party_name,
            r.vote_count,
            r.vote_percentage,
            r.rank_position
        FROM elections e
        JOIN election_results r ON r.election_id = e.id
        JOIN candidates c ON c.id = r.candidate_id
        WHERE e.result_published = TRUE`,
	}

	for _, viewSQL := range views {
		if err := db.Exec(viewSQL).Error; err != nil {
			return err
		}
	}

	comments := []string{
		"COMMENT ON TABLE voters IS 'Registered, identity-verified voters (and administrators)'",
		"COMMENT ON TABLE elections IS 'Elections with lifecycle status and result-publication gate'",
		"COMMENT ON TABLE candidates IS 'Voters standing in a specific election, at most once per election'",
		"COMMENT ON TABLE votes IS 'Append-only vote log; unique (election_id, voter_id) enforces one vote per voter'",
		"COMMENT ON TABLE voter_election_status IS 'Denormalized has-voted mirror of the votes table'",
		"COMMENT ON TABLE election_results IS 'Derived per-candidate counts, percentages and ranks, recomputed from votes'",
		"COMMENT ON TABLE election_reports IS 'Per-election summary: turnout, winner and margin'",
		"COMMENT ON TABLE aadhar_registry IS 'Seeded national ID registry used for registration verification'",
		"COMMENT ON TABLE voter_id_registry IS 'Seeded electoral-roll registry used for registration verification'",
	}

	for _, commentSQL := range comments {
		db.Exec(commentSQL) // Don't fail if comments can't be added
	}

	return nil
}

// migration005Down drops analytical views
func migration005Down(db *gorm.DB) error {
	views := []string{
		"published_results",
		"election_turnout",
	}

	for _, view := range views {
		if err := db.Exec("DROP VIEW IF EXISTS " + view + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
