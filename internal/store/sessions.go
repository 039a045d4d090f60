package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelreview/internal/review"
)

const sessionColumns = "id, video_id, owner_id, title, description, due_date, required_approvers, is_public, password, status, supersedes_id, created_at, updated_at"

const participantColumns = "id, session_id, user_id, email, name, role, status, note, invited_at, decided_at"

// SaveReview writes the session row and replaces its participant set in one
// transaction.
func (s *Store) SaveReview(ctx context.Context, state review.State) error {
	sess := state.Session
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_sessions (`+sessionColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET
                owner_id = excluded.owner_id,
                title = excluded.title,
                description = excluded.description,
                due_date = excluded.due_date,
                required_approvers = excluded.required_approvers,
                is_public = excluded.is_public,
                password = excluded.password,
                status = excluded.status,
                supersedes_id = excluded.supersedes_id,
                updated_at = excluded.updated_at`,
			sess.ID,
			sess.VideoID,
			nullableString(sess.OwnerID),
			sess.Title,
			nullableString(sess.Description),
			nullableTime(sess.DueDate),
			sess.RequiredApprovers,
			boolToInt(sess.IsPublic),
			nullableString(sess.Password),
			string(sess.Status),
			nullableString(sess.SupersedesID),
			formatTime(sess.CreatedAt),
			formatTime(sess.UpdatedAt),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_participants WHERE session_id = ?`, sess.ID); err != nil {
			return err
		}
		for _, p := range state.Participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO review_participants (`+participantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID,
				sess.ID,
				nullableString(p.UserID),
				nullableString(p.Email),
				nullableString(p.Name),
				string(p.Role),
				string(p.Status),
				nullableString(p.Note),
				formatTime(p.InvitedAt),
				nullableTime(p.DecidedAt),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save review %s: %w", sess.ID, err)
	}
	return nil
}

// GetReview loads a session with its participants ordered by invitation.
// A missing session returns nil without error.
func (s *Store) GetReview(ctx context.Context, id string) (*review.State, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM review_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	participants, err := s.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	return &review.State{Session: *sess, Participants: participants}, nil
}

// SessionsByVideo lists the sessions of a video, oldest first, without
// participants.
func (s *Store) SessionsByVideo(ctx context.Context, videoID string) ([]review.Session, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+sessionColumns+` FROM review_sessions WHERE video_id = ? ORDER BY created_at, id`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []review.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func (s *Store) participants(ctx context.Context, sessionID string) ([]review.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM review_participants WHERE session_id = ? ORDER BY invited_at, rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []review.Participant
	for rows.Next() {
		var (
			p          review.Participant
			userID     sql.NullString
			email      sql.NullString
			name       sql.NullString
			role       string
			status     string
			note       sql.NullString
			invitedRaw sql.NullString
			decidedRaw sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &userID, &email, &name, &role, &status, &note, &invitedRaw, &decidedRaw); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.UserID = userID.String
		p.Email = email.String
		p.Name = name.String
		p.Role = review.Role(role)
		p.Status = review.ParticipantStatus(status)
		p.Note = note.String
		p.InvitedAt = parseTime(invitedRaw)
		p.DecidedAt = parseTimePtr(decidedRaw)
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanSession(scanner rowScanner) (*review.Session, error) {
	var (
		sess         review.Session
		ownerID      sql.NullString
		description  sql.NullString
		dueRaw       sql.NullString
		isPublic     int
		password     sql.NullString
		status       string
		supersedesID sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&sess.ID,
		&sess.VideoID,
		&ownerID,
		&sess.Title,
		&description,
		&dueRaw,
		&sess.RequiredApprovers,
		&isPublic,
		&password,
		&status,
		&supersedesID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	sess.OwnerID = ownerID.String
	sess.Description = description.String
	sess.DueDate = parseTimePtr(dueRaw)
	sess.IsPublic = isPublic != 0
	sess.Password = password.String
	sess.Status = review.Status(status)
	sess.SupersedesID = supersedesID.String
	sess.CreatedAt = parseTime(createdRaw)
	sess.UpdatedAt = parseTime(updatedRaw)
	return &sess, nil
}
