package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"

	_ "image/jpeg" // register decoders for uploaded formats

	"github.com/lozanotech/task-manager-api/internal/storage"
	"github.com/lozanotech/task-manager-api/internal/validation"
	"golang.org/x/image/draw"
)

// avatarSize is the edge length the uploaded image is resampled to.
const avatarSize = 250

type AvatarService struct {
	storage storage.Storage
}

func NewAvatarService(storage storage.Storage) *AvatarService {
	return &AvatarService{storage: storage}
}

// Upload validates the file (size, sniffed content type, extension), resizes
// it to 250x250 and stores it re-encoded as PNG. The source bytes are never
// persisted.
func (s *AvatarService) Upload(userID string, header *multipart.FileHeader) error {
	err := validation.ValidateFile(header, validation.AvatarConstraints)
	if err != nil {
		return invalidInput(err)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoded, err := normalize(file)
	if err != nil {
		return invalidInput(err)
	}

	err = s.storage.SaveAvatar(userID, encoded)
	if err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	return nil
}

// Avatar returns the stored PNG bytes, or storage.ErrAvatarNotFound.
func (s *AvatarService) Avatar(userID string) ([]byte, error) {
	return s.storage.Avatar(userID)
}

func (s *AvatarService) Delete(userID string) error {
	return s.storage.DeleteAvatar(userID)
}

// normalize decodes the upload and re-encodes it as a 250x250 PNG.
func normalize(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	err = png.Encode(&buf, dst)
	if err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
