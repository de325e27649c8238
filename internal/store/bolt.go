package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/lojasmm/quickreplies/internal/quickreply"
)

var (
	messagesBucket    = []byte("messages")
	submissionsBucket = []byte("submissions")
)

const maxSubmissionsPerChat = 50

// ErrNotFound is returned when a chat has no displayed message.
var ErrNotFound = errors.New("not found")

// Message is the message currently displayed in a chat, with its quick replies.
type Message struct {
	ID           string           `json:"id"`
	Text         string           `json:"text"`
	QuickReplies *quickreply.Spec `json:"quick_replies,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Submission is one set of replies reported for a message.
type Submission struct {
	ID          string             `json:"id"`
	Phone       string             `json:"phone"`
	MessageID   string             `json:"message_id"`
	Replies     []quickreply.Reply `json:"replies"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

type Store interface {
	SaveMessage(phone string, m Message) (Message, error)
	GetMessage(phone string) (Message, error)
	DeleteMessage(phone string) error
	AddSubmission(s Submission) (Submission, error)
	ListSubmissions(phone string) ([]Submission, error)
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(messagesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(submissionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveMessage replaces the message displayed in the chat. An empty ID is
// filled with a new one.
func (s *BoltStore) SaveMessage(phone string, m Message) (Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return tx.Bucket(messagesBucket).Put([]byte(phone), data)
	})
	return m, err
}

func (s *BoltStore) GetMessage(phone string) (Message, error) {
	var m Message
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(messagesBucket).Get([]byte(phone))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &m)
	})
	return m, err
}

func (s *BoltStore) DeleteMessage(phone string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(messagesBucket).Delete([]byte(phone))
	})
}

// AddSubmission appends sub to the chat history, keeping the newest
// maxSubmissionsPerChat entries.
func (s *BoltStore) AddSubmission(sub Submission) (Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(submissionsBucket)
		var history []Submission
		if v := b.Get([]byte(sub.Phone)); v != nil {
			if err := json.Unmarshal(v, &history); err != nil {
				return err
			}
		}
		history = append(history, sub)
		if len(history) > maxSubmissionsPerChat {
			history = history[len(history)-maxSubmissionsPerChat:]
		}
		data, err := json.Marshal(history)
		if err != nil {
			return err
		}
		return b.Put([]byte(sub.Phone), data)
	})
	return sub, err
}

func (s *BoltStore) ListSubmissions(phone string) ([]Submission, error) {
	var history []Submission
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(submissionsBucket).Get([]byte(phone))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &history)
	})
	return history, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
