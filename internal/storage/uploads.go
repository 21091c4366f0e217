package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// MaxDocuments is the attachment cap per request.
const MaxDocuments = 3

// DocumentStore saves task attachments under a single directory.
// Only PDF files are accepted; stored names are generated so uploads
// can never collide or traverse paths.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the upload directory if needed.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Dir returns the directory documents are stored under.
func (s *DocumentStore) Dir() string {
	return s.dir
}

// Save validates and stores the uploaded files, returning the generated
// filenames in submission order. Validation failures write nothing.
func (s *DocumentStore) Save(files []*multipart.FileHeader) (models.DocumentList, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > MaxDocuments {
		return nil, models.NewValidationError(fmt.Sprintf("At most %d documents per request", MaxDocuments))
	}
	for _, fh := range files {
		if strings.ToLower(filepath.Ext(fh.Filename)) != ".pdf" {
			return nil, models.NewValidationError("Only PDF files are allowed")
		}
	}

	names := make(models.DocumentList, 0, len(files))
	for _, fh := range files {
		name := uuid.New().String() + "-" + filepath.Base(fh.Filename)
		if err := s.write(fh, name); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"filename": name,
			"size":     fh.Size,
		}).Debug("Stored document")
		names = append(names, name)
	}
	return names, nil
}

func (s *DocumentStore) write(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
