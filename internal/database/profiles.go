package database

import (
	"context"

	"github.com/google/uuid"
)

const createProfile = `
INSERT INTO profiles (hotel_id, role, full_name, username, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, hotel_id, role, full_name, username, password_hash, created_at
`

type CreateProfileParams struct {
	HotelID      uuid.UUID
	Role         string
	FullName     string
	Username     string
	PasswordHash string
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) (Profile, error) {
	row := q.db.QueryRow(ctx, createProfile,
		arg.HotelID, arg.Role, arg.FullName, arg.Username, arg.PasswordHash)
	return scanProfile(row)
}

const getProfileByUsername = `
SELECT id, hotel_id, role, full_name, username, password_hash, created_at
FROM profiles
WHERE username = $1
`

func (q *Queries) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, getProfileByUsername, username))
}

const getProfileByID = `
SELECT id, hotel_id, role, full_name, username, password_hash, created_at
FROM profiles
WHERE id = $1
`

func (q *Queries) GetProfileByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, getProfileByID, id))
}

const listStaffByHotel = `
SELECT id, hotel_id, role, full_name, username, password_hash, created_at
FROM profiles
WHERE hotel_id = $1 AND role IN ('waiter', 'kitchen')
ORDER BY full_name
`

func (q *Queries) ListStaffByHotel(ctx context.Context, hotelID uuid.UUID) ([]Profile, error) {
	rows, err := q.db.Query(ctx, listStaffByHotel, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.HotelID, &p.Role, &p.FullName,
			&p.Username, &p.PasswordHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

const repairProfile = `
UPDATE profiles
SET full_name = $3, username = $4
WHERE id = $1 AND hotel_id = $2
RETURNING id, hotel_id, role, full_name, username, password_hash, created_at
`

type RepairProfileParams struct {
	ID       uuid.UUID
	HotelID  uuid.UUID
	FullName string
	Username string
}

func (q *Queries) RepairProfile(ctx context.Context, arg RepairProfileParams) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, repairProfile,
		arg.ID, arg.HotelID, arg.FullName, arg.Username))
}

const deleteProfile = `
DELETE FROM profiles
WHERE id = $1 AND hotel_id = $2 AND role <> 'admin'
RETURNING id
`

type DeleteProfileParams struct {
	ID      uuid.UUID
	HotelID uuid.UUID
}

func (q *Queries) DeleteProfile(ctx context.Context, arg DeleteProfileParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteProfile, arg.ID, arg.HotelID).Scan(&id)
	return id, err
}

func scanProfile(row interface{ Scan(...any) error }) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.HotelID, &p.Role, &p.FullName,
		&p.Username, &p.PasswordHash, &p.CreatedAt)
	return p, err
}
