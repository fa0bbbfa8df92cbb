package store

import (
	"database/sql"
	"time"

	"meetmate/internal/domain"
)

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		id        int64
		first     string
		last      string
		username  string
		createdAt int64
	)
	if err := s.Scan(&id, &first, &last, &username, &createdAt); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Username:  username,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}, nil
}

func scanEvent(s scanner) (*domain.Event, error) {
	var (
		id            int64
		creatorID     int64
		participantID int64
		description   string
		startsAt      int64
	)
	if err := s.Scan(&id, &creatorID, &participantID, &description, &startsAt); err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:            id,
		CreatorID:     creatorID,
		ParticipantID: participantID,
		Description:   description,
		StartsAt:      time.Unix(startsAt, 0).UTC(),
	}, nil
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}
