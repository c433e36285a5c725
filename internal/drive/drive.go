// Package drive wraps the Google Drive v3 API behind the small capability
// surface the mirror hierarchy needs: folder ensure, tagged file create,
// lookup by tag, delete, and a root-folder diagnosis for health checks.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
)

// FolderMimeType identifies Drive folders in list queries.
const FolderMimeType = "application/vnd.google-apps.folder"

// File is a minimal view of a Drive file.
type File struct {
	ID   string
	Name string
}

// CreateFileInput describes a single tagged upload into a parent folder.
// Properties become queryable appProperties on the created file.
type CreateFileInput struct {
	Name        string
	ContentType string
	ParentID    string
	Properties  map[string]string
	Content     io.Reader
}

// FolderDiagnosis is the introspection result for a mirror root folder.
type FolderDiagnosis struct {
	FolderID           string `json:"folderId"`
	FolderName         string `json:"folderName,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
	DriveID            string `json:"driveId,omitempty"`
	CanAddChildren     bool   `json:"canAddChildren"`
	CanEdit            bool   `json:"canEdit"`
	EffectiveAuthEmail string `json:"effectiveAuthEmail,omitempty"`
}

// FolderStore is the capability interface over the mirror drive. The google
// implementation below is the only production one; tests use a testify mock.
type FolderStore interface {
	// EnsureChildFolder returns the id of the named child folder under
	// parentID, creating it when absent. Concurrent callers may race the
	// list+create pair; last-create-wins is accepted.
	EnsureChildFolder(ctx context.Context, parentID, name string) (string, error)
	// CreateFile uploads a new file and returns its id.
	CreateFile(ctx context.Context, in CreateFileInput) (string, error)
	// Download returns the raw content of a file.
	Download(ctx context.Context, fileID string) ([]byte, error)
	// DeleteFile removes a file by id.
	DeleteFile(ctx context.Context, fileID string) error
	// ListByProperty finds files tagged with the given appProperty.
	ListByProperty(ctx context.Context, key, value string) ([]File, error)
	// DiagnoseFolder introspects a folder and the effective identity.
	DiagnoseFolder(ctx context.Context, folderID string) (*FolderDiagnosis, error)
}

type googleFolderStore struct {
	svc *gdrive.Service
}

// NewFolderStore wraps an authenticated Drive service.
func NewFolderStore(svc *gdrive.Service) FolderStore {
	return &googleFolderStore{svc: svc}
}

// escapeQueryValue escapes single quotes for embedding in a Drive query.
func escapeQueryValue(value string) string {
	return strings.ReplaceAll(value, "'", `\'`)
}

func (g *googleFolderStore) EnsureChildFolder(ctx context.Context, parentID, name string) (string, error) {
	q := fmt.Sprintf(
		"'%s' in parents and trashed = false and mimeType = '%s' and name = '%s'",
		escapeQueryValue(parentID), FolderMimeType, escapeQueryValue(name),
	)
	listed, err := g.svc.Files.List().
		Q(q).
		Fields("files(id,name)").
		PageSize(10).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list child folders: %w", err)
	}
	for _, f := range listed.Files {
		if f.Id != "" {
			return f.Id, nil
		}
	}

	created, err := g.svc.Files.Create(&gdrive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	if created.Id == "" {
		return "", fmt.Errorf("create folder %q: empty id in response", name)
	}
	return created.Id, nil
}

func (g *googleFolderStore) CreateFile(ctx context.Context, in CreateFileInput) (string, error) {
	created, err := g.svc.Files.Create(&gdrive.File{
		Name:          in.Name,
		MimeType:      in.ContentType,
		Parents:       []string{in.ParentID},
		AppProperties: in.Properties,
	}).Media(in.Content).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create file %q: %w", in.Name, err)
	}
	if created.Id == "" {
		return "", fmt.Errorf("create file %q: empty id in response", in.Name)
	}
	return created.Id, nil
}

func (g *googleFolderStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := g.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	return data, nil
}

func (g *googleFolderStore) DeleteFile(ctx context.Context, fileID string) error {
	return g.svc.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do()
}

func (g *googleFolderStore) ListByProperty(ctx context.Context, key, value string) ([]File, error) {
	q := fmt.Sprintf(
		"trashed = false and appProperties has { key='%s' and value='%s' }",
		escapeQueryValue(key), escapeQueryValue(value),
	)
	listed, err := g.svc.Files.List().
		Q(q).
		Fields("files(id,name)").
		PageSize(100).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list by property %s: %w", key, err)
	}
	files := make([]File, 0, len(listed.Files))
	for _, f := range listed.Files {
		if f.Id != "" {
			files = append(files, File{ID: f.Id, Name: f.Name})
		}
	}
	return files, nil
}

func (g *googleFolderStore) DiagnoseFolder(ctx context.Context, folderID string) (*FolderDiagnosis, error) {
	folder, err := g.svc.Files.Get(folderID).
		SupportsAllDrives(true).
		Fields("id,name,mimeType,driveId,capabilities(canAddChildren,canEdit)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	about, err := g.svc.About.Get().Fields("user(emailAddress)").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	d := &FolderDiagnosis{
		FolderID:   folderID,
		FolderName: folder.Name,
		MimeType:   folder.MimeType,
		DriveID:    folder.DriveId,
	}
	if folder.Capabilities != nil {
		d.CanAddChildren = folder.Capabilities.CanAddChildren
		d.CanEdit = folder.Capabilities.CanEdit
	}
	if about.User != nil {
		d.EffectiveAuthEmail = about.User.EmailAddress
	}
	return d, nil
}
