package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/schoolcases/internal/export"
	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
)

func artifacts() []export.Artifact {
	return []export.Artifact{
		{Name: export.CasesCSV, ContentType: "text/csv", Body: []byte("a,b\n")},
		{Name: export.MetaJSON, ContentType: "application/json", Body: []byte(`{"grand_total":1}`)},
	}
}

type putCall struct {
	bucket, key, contentType string
	acl                      types.ObjectCannedACL
	body                     string
	metadata                 map[string]string
}

type fakeS3 struct {
	calls  []putCall
	failOn string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{
		bucket:      aws.ToString(in.Bucket),
		key:         key,
		contentType: aws.ToString(in.ContentType),
		acl:         in.ACL,
		body:        string(body),
		metadata:    in.Metadata,
	})
	return &s3.PutObjectOutput{}, nil
}

func TestLocalDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := LocalDir{Dir: dir}.Publish(context.Background(), artifacts())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, export.CasesCSV),
		filepath.Join(dir, export.MetaJSON),
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, export.MetaJSON))
	require.NoError(t, err)
	assert.Equal(t, `{"grand_total":1}`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestLocalDir_Overwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, export.CasesCSV), []byte("stale"), 0o644))

	_, err := LocalDir{Dir: dir}.Publish(context.Background(), artifacts())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, export.CasesCSV))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestS3_Publish(t *testing.T) {
	fake := &fakeS3{}
	p := NewS3(fake, "dashboard", "doe_cases/", "run-1", zerolog.Nop())

	uploaded, err := p.Publish(context.Background(), artifacts())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://dashboard/doe_cases/cases.csv",
		"s3://dashboard/doe_cases/meta.json",
	}, uploaded)

	require.Len(t, fake.calls, 2)
	first := fake.calls[0]
	assert.Equal(t, "dashboard", first.bucket)
	assert.Equal(t, "doe_cases/cases.csv", first.key)
	assert.Equal(t, "text/csv", first.contentType)
	assert.Equal(t, types.ObjectCannedACLPublicRead, first.acl)
	assert.Equal(t, "a,b\n", first.body)
	assert.Equal(t, "run-1", first.metadata["run-id"])
	assert.Equal(t, normalize.ContentHash([]byte("a,b\n")), first.metadata["sha256"])
	assert.Equal(t, "application/json", fake.calls[1].contentType)
}

func TestS3_PublishStopsOnFailure(t *testing.T) {
	fake := &fakeS3{failOn: "cases.csv"}
	p := NewS3(fake, "dashboard", "", "run-1", zerolog.Nop())

	uploaded, err := p.Publish(context.Background(), artifacts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://dashboard/cases.csv")
	assert.Empty(t, uploaded)
	assert.Empty(t, fake.calls)
}

func TestS3_Key(t *testing.T) {
	assert.Equal(t, "meta.json", NewS3(nil, "b", "", "", zerolog.Nop()).Key("meta.json"))
	assert.Equal(t, "doe_cases/meta.json", NewS3(nil, "b", "doe_cases", "", zerolog.Nop()).Key("meta.json"))
	assert.Equal(t, "doe_cases/meta.json", NewS3(nil, "b", "doe_cases/", "", zerolog.Nop()).Key("meta.json"))
}

func TestMulti(t *testing.T) {
	fake := &fakeS3{}
	dir := t.TempDir()
	m := Multi{LocalDir{Dir: dir}, NewS3(fake, "dashboard", "p", "run-1", zerolog.Nop())}

	locs, err := m.Publish(context.Background(), artifacts())
	require.NoError(t, err)
	assert.Len(t, locs, 4)
	assert.Len(t, fake.calls, 2)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	_, err := LocalDir{Dir: dir}.Publish(context.Background(), artifacts())
	require.NoError(t, err)

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, export.CasesCSV, loaded[0].Name)
	assert.Equal(t, "text/csv", loaded[0].ContentType)
	assert.Equal(t, export.MetaJSON, loaded[1].Name)
	assert.Equal(t, `{"grand_total":1}`, string(loaded[1].Body))
}

func TestLoadDir_ChecksParquet(t *testing.T) {
	dir := t.TempDir()
	body, err := export.RenderCasesParquet([]model.CaseRecord{
		{Region: "Kailua-Kalaheo", School: "Kailua High", DateReportedRaw: "2021-09-01", Count: 2},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, export.CasesParquet), body, 0o644))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, export.CasesParquet, loaded[0].Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, export.CasesParquet), body[:len(body)/2], 0o644))
	_, err = LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}
