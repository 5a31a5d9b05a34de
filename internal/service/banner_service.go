package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"

	"eventdesk/internal/media/sniffer"
	"eventdesk/internal/storage"
)

const maxBannerBytes = 5 << 20 // 5 MiB

var ErrBannerTooLarge = errors.New("banner exceeds size limit")

// BannerService puts event banner images into object storage and
// records the resulting URL on the event.
type BannerService struct {
	events  EventStore
	banners *storage.BannerStore
	log     zerolog.Logger
}

func NewBannerService(events EventStore, banners *storage.BannerStore, log zerolog.Logger) *BannerService {
	return &BannerService{
		events:  events,
		banners: banners,
		log:     log,
	}
}

// Attach validates and stores the uploaded banner for the event and
// returns the stored URL.
func (s *BannerService) Attach(ctx context.Context, eventID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if file == nil || header == nil {
		return "", errors.New("invalid file payload")
	}
	if header.Size > maxBannerBytes {
		return "", ErrBannerTooLarge
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBannerBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxBannerBytes {
		return "", ErrBannerTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}

	objectKey := fmt.Sprintf("banners/%s.%s", event.ID, result.Type)
	url, err := s.banners.Put(ctx, objectKey, data, result.MIME)
	if err != nil {
		return "", err
	}

	if err := s.events.SetBannerURL(ctx, event.ID, url); err != nil {
		return "", err
	}

	s.log.Info().Str("event_id", event.ID).Str("url", url).Msg("banner attached")
	return url, nil
}
