package service

import (
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid" // For generating unique identifiers for S3 keys
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound     = errors.New("program not found")
	ErrProgramAccessDenied = errors.New("access denied to modify this program")
	ErrUploadURLError      = errors.New("failed to generate upload URL")
	ErrDownloadURLError    = errors.New("failed to generate download URL")
)

// CoverUploadResponse carries the presigned PUT URL and the object key the
// app must upload against.
type CoverUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ProgramService interface {
	CreateProgram(ctx context.Context, coachID primitive.ObjectID, title, description string, sessions []domain.SessionTemplate) (*domain.Program, error)
	GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error)
	GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	RequestCoverUpload(ctx context.Context, coachID, programID primitive.ObjectID, contentType string) (*CoverUploadResponse, error)
	GetCoverURL(ctx context.Context, programID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type programService struct {
	programRepo  repository.ProgramRepository
	mediaStorage storage.MediaStorage
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository, mediaStorage storage.MediaStorage) ProgramService {
	return &programService{
		programRepo:  programRepo,
		mediaStorage: mediaStorage,
	}
}

// CreateProgram creates a new marketplace offering for the coach.
func (s *programService) CreateProgram(ctx context.Context, coachID primitive.ObjectID, title, description string, sessions []domain.SessionTemplate) (*domain.Program, error) {
	if coachID == primitive.NilObjectID || title == "" {
		return nil, errors.New("coach ID and title are required")
	}
	for i, tmpl := range sessions {
		if tmpl.Title == "" {
			return nil, fmt.Errorf("session template %d requires a title", i)
		}
	}

	program := &domain.Program{
		CoachID:     coachID,
		Title:       title,
		Description: description,
		Sessions:    sessions,
		// ID, CreatedAt, UpdatedAt set by repository
	}

	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = programID
	return program, nil
}

// GetProgram retrieves one program.
func (s *programService) GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// GetProgramsByCoach retrieves the coach's own offerings.
func (s *programService) GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.programRepo.GetByCoachID(ctx, coachID)
}

// ListPrograms retrieves the marketplace catalogue.
func (s *programService) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	return s.programRepo.List(ctx)
}

// RequestCoverUpload generates a presigned PUT URL for the program's cover
// image and records the object key. Only the owning coach may replace it.
func (s *programService) RequestCoverUpload(ctx context.Context, coachID, programID primitive.ObjectID, contentType string) (*CoverUploadResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New("cover must be an image content type")
	}

	program, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrProgramAccessDenied
	}

	// Unique object key so a replaced cover never collides with CDN caches
	uniqueID := uuid.NewString()
	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("covers", program.CoachID.Hex(), programID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.mediaStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	if err := s.programRepo.SetCoverKey(ctx, programID, objectKey); err != nil {
		return nil, err
	}

	return &CoverUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// GetCoverURL generates a short-lived download URL for the program's cover.
func (s *programService) GetCoverURL(ctx context.Context, programID primitive.ObjectID) (string, error) {
	program, err := s.GetProgram(ctx, programID)
	if err != nil {
		return "", err
	}
	if program.CoverKey == "" {
		return "", nil
	}

	downloadURL, err := s.mediaStorage.GeneratePresignedDownloadURL(ctx, program.CoverKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}
