package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Journal persists every event as a JSON document under baseURL, grouped by
// day.  Any afs supported location (file://, mem://, s3://, gs://) works.
type Journal struct {
	baseURL string
	fs      afs.Service
}

// NewJournal creates a journal rooted at baseURL.
func NewJournal(ctx context.Context, baseURL string) (*Journal, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("journal base URL cannot be empty")
	}
	fs := afs.New()
	if !strings.Contains(baseURL, "://") {
		baseURL = url.Normalize(baseURL, file.Scheme)
	}
	if exists, _ := fs.Exists(ctx, baseURL); !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}
	return &Journal{baseURL: baseURL, fs: fs}, nil
}

func (j *Journal) Dispatch(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	location := j.eventURL(event)
	if err = j.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write event %s: %w", location, err)
	}
	return nil
}

// Events reads back every journaled event.
func (j *Journal) Events(ctx context.Context) ([]*Event, error) {
	objects, err := j.fs.List(ctx, j.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	var ret []*Event
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := j.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", object.URL(), err)
		}
		event := &Event{}
		if err = json.Unmarshal(data, event); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", object.URL(), err)
		}
		ret = append(ret, event)
	}
	return ret, nil
}

func (j *Journal) eventURL(event *Event) string {
	day := event.OccurredAt.UTC().Format("2006-01-02")
	name := fmt.Sprintf("%s_%s_%s.json", event.RequestNumber, strings.ReplaceAll(event.Topic, ".", "_"), event.ID)
	return url.Join(j.baseURL, path.Join(day, name))
}
