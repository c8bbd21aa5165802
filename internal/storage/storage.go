package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	DefaultVolume       float64                `json:"default_volume"` // 0 means "not set", playback defaults to 1.0
	LastStation         string                 `json:"last_station"`   // last station key played on this guild
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(context.Background(), filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	found, err := s.ds.Get(guildID, &record)
	if err != nil {
		return nil, fmt.Errorf("error reading guild record: %w", err)
	}
	if !found {
		record.CommandsHistoryList = []CommandHistoryRecord{}
		if err := s.ds.Set(guildID, &record); err != nil {
			return nil, fmt.Errorf("error creating guild record: %w", err)
		}
		return &record, nil
	}

	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	return s.ds.Set(guildID, record)
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	return record.CommandsHistoryList, nil
}

// DefaultVolume returns the saved default playback volume for a guild,
// or 1.0 if the guild never set one.
func (s *Storage) DefaultVolume(guildID string) (float64, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return 1, err
	}
	if record.DefaultVolume <= 0 {
		return 1, nil
	}
	return record.DefaultVolume, nil
}

func (s *Storage) SetDefaultVolume(guildID string, volume float64) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.DefaultVolume = volume
	return s.ds.Set(guildID, record)
}

func (s *Storage) SetLastStation(guildID string, stationKey string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.LastStation = stationKey
	return s.ds.Set(guildID, record)
}

func (s *Storage) LastStation(guildID string) (string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.LastStation, nil
}
