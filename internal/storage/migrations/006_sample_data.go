package migrations

import "gorm.io/gorm"

// migration006Up inserts seed data: the default administrator and the
// identity registries used to verify voter registrations in development.
func migration006Up(db *gorm.DB) error {
	// bcrypt hash of the development-only password "admin123"
	adminSQL := `
        INSERT INTO voters (id, email, password_hash, full_name, date_of_birth, city, state, role, is_verified, verified_at) VALUES
            ('550e8400-e29b-41d4-a716-446655440000',
             'admin@ballotworks.io',
             '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy',
             'System Administrator',
             '1980-01-01',
             'New Delhi',
             'Delhi',
             'admin',
             TRUE,
             CURRENT_TIMESTAMP)
        ON CONFLICT (email) DO NOTHING
    `

	if err := db.Exec(adminSQL).Error; err != nil {
		return err
	}

	aadharSQL := `
        INSERT INTO aadhar_registry (id, aadhar_number, full_name, date_of_birth, is_valid) VALUES
            ('660e8400-e29b-41d4-a716-446655440001', '123456789012', 'Asha Kumari', '1990-03-15', TRUE),
            ('660e8400-e29b-41d4-a716-446655440002', '234567890123', 'Rahul Verma', '1985-07-22', TRUE),
            ('660e8400-e29b-41d4-a716-446655440003', '345678901234', 'Priya Nair', '1992-11-02', TRUE),
            ('660e8400-e29b-41d4-a716-446655440004', '456789012345', 'Suresh Patel', '1978-01-30', TRUE),
            ('660e8400-e29b-41d4-a716-446655440005', '567890123456', 'Meena Joshi', '1995-05-09', TRUE),
            ('660e8400-e29b-41d4-a716-446655440006', '678901234567', 'Revoked Entry', '1970-12-25', FALSE)
        ON CONFLICT (aadhar_number) DO NOTHING
    `

	if err := db.Exec(aadharSQL).Error; err != nil {
		return err
	}

	voterIDSQL := `
        INSERT INTO voter_id_registry (id, voter_id_number, full_name, date_of_birth, is_valid) VALUES
            ('770e8400-e29b-41d4-a716-446655440001', 'ABC1234567', 'Asha Kumari', '1990-03-15', TRUE),
            ('770e8400-e29b-41d4-a716-446655440002', 'DEF2345678', 'Rahul Verma', '1985-07-22', TRUE),
            ('770e8400-e29b-41d4-a716-446655440003', 'GHI3456789', 'Priya Nair', '1992-11-02', TRUE),
            ('770e8400-e29b-41d4-a716-446655440004', 'JKL4567890', 'Suresh Patel', '1978-01-30', TRUE),
            ('770e8400-e29b-41d4-a716-446655440005', 'MNO5678901', 'Meena Joshi', '1995-05-09', TRUE),
            ('770e8400-e29b-41d4-a716-446655440006', 'PQR6789012', 'Revoked Entry', '1970-12-25', FALSE)
        ON CONFLICT (voter_id_number) DO NOTHING
    `

	if err := db.Exec(voterIDSQL).Error; err != nil {
		return err
	}

	return nil
}

// migration006Down removes seed data
func migration006Down(db *gorm.DB) error {
	queries := []string{
		"DELETE FROM voter_id_registry WHERE id::text LIKE '770e8400-e29b-41d4-a716-%'",
		"DELETE FROM aadhar_registry WHERE id::text LIKE '660e8400-e29b-41d4-a716-%'",
		"DELETE FROM voters WHERE email = 'admin@ballotworks.io'",
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return err
		}
	}

	return nil
}
