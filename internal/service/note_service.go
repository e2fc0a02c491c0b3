package service

import (
	"mdnotes-server/internal/domain"
	"mdnotes-server/internal/repository"

	"github.com/rs/zerolog"
)

const (
	DefaultSeedName    = "welcome.md"
	DefaultSeedContent = "# Welcome to your new Markdown Editor!\n\nStart typing here."
)

type NoteService struct {
	repo     repository.NoteRepository
	seedName string
	logger   zerolog.Logger
}

func NewNoteService(repo repository.NoteRepository, seedName string, logger zerolog.Logger) *NoteService {
	if seedName == "" {
		seedName = DefaultSeedName
	}

	return &NoteService{
		repo:     repo,
		seedName: seedName,
		logger:   logger.With().Str("component", "notes").Logger(),
	}
}

// Bootstrap creates the notes directory and, when it holds no entries at
// all, writes the seed note. It runs once at startup.
func (s *NoteService) Bootstrap() error {
	if err := s.repo.Init(); err != nil {
		return err
	}

	empty, err := s.repo.IsEmpty()
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	name, err := s.repo.Write(s.seedName, DefaultSeedContent)
	if err != nil {
		return err
	}

	s.logger.Info().Str("note", name).Msg("seeded empty notes directory")
	return nil
}

func (s *NoteService) List() (*domain.FileListResponse, error) {
	files, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	return &domain.FileListResponse{Files: files}, nil
}

func (s *NoteService) Get(name string) (*domain.Note, error) {
	content, err := s.repo.Read(name)
	if err != nil {
		return nil, err
	}

	return &domain.Note{
		Name:    name,
		Content: content,
	}, nil
}

// Save creates or fully replaces a note and returns the stored file name.
func (s *NoteService) Save(name string, req *domain.SaveNoteRequest) (string, error) {
	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	stored, err := s.repo.Write(name, content)
	if err != nil {
		return "", err
	}

	s.logger.Debug().Str("note", stored).Int("bytes", len(content)).Msg("note saved")
	return stored, nil
}

func (s *NoteService) Delete(name string) error {
	if err := s.repo.Delete(name); err != nil {
		return err
	}

	s.logger.Debug().Str("note", name).Msg("note deleted")
	return nil
}
