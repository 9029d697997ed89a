package gdrive

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"
const documentMimeType = "application/vnd.google-apps.document"

// Drive is a thin client over the Drive v3 files API.
type Drive struct {
	files *drive.FilesService
}

// NewDrive builds a Drive client. opts usually carry option.WithHTTPClient.
func NewDrive(ctx context.Context, opts ...option.ClientOption) (*Drive, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create drive service")
	}
	return &Drive{files: svc.Files}, nil
}

// quote renders s as a Drive query string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func (d *Drive) list(ctx context.Context, q string, fields googleapi.Field) ([]*drive.File, error) {
	var out []*drive.File
	err := d.files.List().
		Q(q).
		Spaces("drive").
		Fields("nextPageToken", "files("+fields+")").
		Pages(ctx, func(page *drive.FileList) error {
			out = append(out, page.Files...)
			return nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "list files")
	}
	return out, nil
}

// FindFolder returns the id of the folder called name inside parentID, or ""
// when there is none.
func (d *Drive) FindFolder(ctx context.Context, parentID, name string) (string, error) {
	q := quote(parentID) + " in parents and name = " + quote(name) +
		" and mimeType = " + quote(folderMimeType) + " and trashed = false"
	files, err := d.list(ctx, q, "id, name")
	if err != nil {
		return "", errors.Wrapf(err, "find folder %q", name)
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[0].Id, nil
}

// EnsureFolder returns the folder called name inside parentID, creating it
// when missing.
func (d *Drive) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	id, err := d.FindFolder(ctx, parentID, name)
	if err != nil || id != "" {
		return id, err
	}
	f, err := d.files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "create folder %q", name)
	}
	return f.Id, nil
}

// ListAudio lists the m4a recordings directly inside folderID.
func (d *Drive) ListAudio(ctx context.Context, folderID string) ([]*drive.File, error) {
	q := quote(folderID) + " in parents and (mimeType = 'audio/mp4' or mimeType = 'audio/x-m4a'" +
		" or name contains '.m4a') and trashed = false"
	files, err := d.list(ctx, q, "id, name, mimeType")
	if err != nil {
		return nil, errors.Wrap(err, "list audio")
	}
	return files, nil
}

// Download streams the content of fileID to dest. A partial file is removed
// on failure.
func (d *Drive) Download(ctx context.Context, fileID, dest string) (err error) {
	resp, err := d.files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return errors.Wrapf(err, "download %s", fileID)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download %s: unexpected status %s", fileID, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(dest))
	}
	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "create %s", dest)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return errors.Wrapf(err, "write %s", dest)
	}
	return nil
}

// Move reparents fileID into folderID.
func (d *Drive) Move(ctx context.Context, fileID, folderID string) error {
	f, err := d.files.Get(fileID).Fields("parents").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "get parents of %s", fileID)
	}
	_, err = d.files.Update(fileID, &drive.File{}).
		AddParents(folderID).
		RemoveParents(strings.Join(f.Parents, ",")).
		Fields("id, parents").
		Context(ctx).
		Do()
	return errors.Wrapf(err, "move %s", fileID)
}

// FindNotesDocument returns the Google Doc in the class's folder under
// classesFolderID whose name ends with suffix, or nil when either is missing.
func (d *Drive) FindNotesDocument(ctx context.Context, classesFolderID, className, suffix string) (*drive.File, error) {
	folderID, err := d.FindFolder(ctx, classesFolderID, className)
	if err != nil || folderID == "" {
		return nil, err
	}
	q := quote(folderID) + " in parents and mimeType = " + quote(documentMimeType) +
		" and name contains " + quote(suffix) + " and trashed = false"
	files, err := d.list(ctx, q, "id, name")
	if err != nil {
		return nil, errors.Wrapf(err, "find %s document", suffix)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name, suffix) {
			return f, nil
		}
	}
	return nil, nil
}
