package pg

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twiliokit/internal/store"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) InsertMessage(ctx context.Context, in store.MessageInsert) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO messages (id, to_phone, body, state, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
	`, in.ID, in.To, in.Body, in.State, in.Now)
	return err
}

func (s *Store) MarkMessageState(ctx context.Context, in store.MessageStateUpdate) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE messages SET state=$2, last_error=$3, updated_at=$4 WHERE id=$1
	`, in.ID, in.State, nullIfEmpty(in.LastError), in.Now)
	return err
}

func (s *Store) SetProviderDetails(ctx context.Context, in store.ProviderDetailsUpdate) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE messages SET provider_msg_id=$2, state=$3, updated_at=$4 WHERE id=$1
	`, in.ID, in.ProviderMsgID, in.State, in.Now)
	return err
}

func (s *Store) GetMessage(ctx context.Context, msgID string) (store.Message, bool, error) {
	var m store.Message
	row := s.DB.QueryRow(ctx, `
		SELECT id, to_phone, body, state, COALESCE(provider_msg_id,''), COALESCE(last_error,''),
		       created_at, updated_at
		FROM messages WHERE id=$1
	`, msgID)

	err := row.Scan(&m.ID, &m.ToPhone, &m.Body, &m.State, &m.ProviderMsgID, &m.LastError, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return store.Message{}, false, nil
		}
		return store.Message{}, false, err
	}
	return m, true, nil
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

func (s *Store) InsertAttempt(ctx context.Context, in store.ProviderAttempt) error {
	respB, _ := json.Marshal(in.ResponseJSON)
	_, err := s.DB.Exec(ctx, `
		INSERT INTO provider_attempts (message_id, provider_msg_id, http_status, error_code, error_msg, response_json)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, in.MessageID, nullIfEmpty(in.ProviderMsgID), in.HTTPStatus, nullIfEmpty(in.ErrorCode), nullIfEmpty(in.ErrorMsg), respB)
	return err
}

func (s *Store) InsertDeliveryEvent(ctx context.Context, in store.DeliveryEvent) error {
	b, _ := json.Marshal(in.Payload)
	_, err := s.DB.Exec(ctx, `
		INSERT INTO delivery_events (provider_msg_id, vendor_status, error_code, payload_json, received_at)
		VALUES ($1,$2,$3,$4,now())
	`, in.ProviderMsgID, in.VendorStatus, nullIfEmpty(in.ErrorCode), b)
	return err
}

func (s *Store) UpdateMessageByProviderMsgID(ctx context.Context, in store.ProviderMsgUpdate) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE messages
		SET state=$2, last_error=$3, updated_at=$4
		WHERE provider_msg_id=$1
	`, in.ProviderMsgID, in.NewState, nullIfEmpty(in.LastError), in.Now)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
