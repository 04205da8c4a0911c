package repository

import (
	"context"
	"database/sql"

	"github.com/leemaz/marketplace-api/internal/model"
)

// ChatRepo persists buyer-seller direct messages.
type ChatRepo struct{ db *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// Insert stores a message and fills in its ID.
func (r *ChatRepo) Insert(ctx context.Context, m *model.ChatMessage) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (sender_id, receiver_id, body) VALUES (?,?,?)`,
		m.SenderID, m.ReceiverID, m.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Conversations returns, per peer the user has exchanged messages with,
// the latest message and the number of their messages still unread.
// The inner grouped query picks the newest message id per peer; ids are
// monotonically increasing so MAX(id) is the latest.
func (r *ChatRepo) Conversations(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.peer_id, u.full_name, cm.body, cm.created_at,
		        (SELECT COUNT(*) FROM chat_messages x
		          WHERE x.sender_id = t.peer_id AND x.receiver_id = ? AND x.is_read = 0)
		 FROM (
		     SELECT IF(sender_id = ?, receiver_id, sender_id) AS peer_id, MAX(id) AS last_id
		     FROM chat_messages
		     WHERE sender_id = ? OR receiver_id = ?
		     GROUP BY peer_id
		 ) t
		 JOIN chat_messages cm ON cm.id = t.last_id
		 JOIN users u ON u.id = t.peer_id
		 ORDER BY cm.created_at DESC`,
		userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	convs := []model.Conversation{}
	for rows.Next() {
		c := model.Conversation{}
		if err := rows.Scan(&c.PeerID, &c.PeerName, &c.LastMessage,
			&c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// Thread returns a page of the conversation between two users, newest
// first.
func (r *ChatRepo) Thread(ctx context.Context, userID, peerID uint64, limit, offset int) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, body, is_read, created_at
		 FROM chat_messages
		 WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?)
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, peerID, peerID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := []model.ChatMessage{}
	for rows.Next() {
		m := model.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body,
			&m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead flags everything the peer sent to the user as read.
func (r *ChatRepo) MarkRead(ctx context.Context, userID, peerID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chat_messages SET is_read=1
		 WHERE sender_id=? AND receiver_id=? AND is_read=0`,
		peerID, userID)
	return err
}
