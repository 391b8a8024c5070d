package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bazar-next/internal/config"
)

const testUploadID = "3f1c9a4e-8a8b-4f7e-9a55-0c5e8f3d2b10"

func newTestUploadService(t *testing.T) (*UploadService, *ChunkService) {
	t.Helper()
	disk, _ := newMemDisk(t)
	svc := NewUploadService(disk, config.MediaConfig{
		ChunkDir:          "chunks",
		ChunkMaxSize:      16,
		MaxChunks:         4,
		AllowedExtensions: []string{".png", "zip"},
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	return svc, NewChunkService(disk, "chunks", time.Hour)
}

func TestSaveChunkAssemblesWhenComplete(t *testing.T) {
	svc, _ := newTestUploadService(t)

	// 乱序上传
	second, err := svc.SaveChunk(ChunkUploadInput{UploadID: testUploadID, Filename: "photo.PNG", Index: 1, Total: 2, Content: strings.NewReader("world")})
	if err != nil {
		t.Fatalf("save second chunk failed: %v", err)
	}
	if second.Completed || second.Received != 1 {
		t.Fatalf("unexpected partial result: %+v", second)
	}

	first, err := svc.SaveChunk(ChunkUploadInput{UploadID: testUploadID, Filename: "photo.PNG", Index: 0, Total: 2, Content: strings.NewReader("hello ")})
	if err != nil {
		t.Fatalf("save first chunk failed: %v", err)
	}
	if !first.Completed || first.Received != 2 {
		t.Fatalf("expected completed upload, got %+v", first)
	}
	wantPath := "/media/2024/03/" + testUploadID + ".png"
	if first.Path != wantPath {
		t.Fatalf("want path %s got %s", wantPath, first.Path)
	}

	rc, err := svc.disk.Open(strings.TrimPrefix(first.Path, "/"))
	if err != nil {
		t.Fatalf("open assembled file failed: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if string(content) != "hello world" {
		t.Fatalf("unexpected assembled content: %q", content)
	}

	leftover, err := svc.disk.AllFiles(context.Background(), "chunks")
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("chunks should be removed after assemble: %v", leftover)
	}
}

func TestSaveChunkNormalizesUploadID(t *testing.T) {
	svc, _ := newTestUploadService(t)

	first, err := svc.SaveChunk(ChunkUploadInput{UploadID: "urn:uuid:" + testUploadID, Filename: "a.png", Index: 0, Total: 2, Content: strings.NewReader("ab")})
	if err != nil {
		t.Fatalf("save first chunk failed: %v", err)
	}
	if first.UploadID != testUploadID {
		t.Fatalf("upload id want %s got %s", testUploadID, first.UploadID)
	}

	second, err := svc.SaveChunk(ChunkUploadInput{UploadID: "{" + strings.ToUpper(testUploadID) + "}", Filename: "a.png", Index: 1, Total: 2, Content: strings.NewReader("cd")})
	if err != nil {
		t.Fatalf("save second chunk failed: %v", err)
	}
	if !second.Completed || second.Received != 2 {
		t.Fatalf("chunks of one upload should be assembled together, got %+v", second)
	}
	if second.Path != "/media/2024/03/"+testUploadID+".png" {
		t.Fatalf("unexpected path: %s", second.Path)
	}
}

func TestSaveChunkGeneratesUploadID(t *testing.T) {
	svc, _ := newTestUploadService(t)
	result, err := svc.SaveChunk(ChunkUploadInput{Filename: "a.zip", Index: 0, Total: 3, Content: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("save chunk failed: %v", err)
	}
	if result.UploadID == "" || result.Completed {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSaveChunkValidation(t *testing.T) {
	svc, _ := newTestUploadService(t)
	cases := []struct {
		name  string
		input ChunkUploadInput
		want  error
	}{
		{"index out of range", ChunkUploadInput{Filename: "a.png", Index: 2, Total: 2, Content: strings.NewReader("x")}, ErrInvalidChunk},
		{"too many chunks", ChunkUploadInput{Filename: "a.png", Index: 0, Total: 5, Content: strings.NewReader("x")}, ErrInvalidChunk},
		{"bad extension", ChunkUploadInput{Filename: "a.exe", Index: 0, Total: 1, Content: strings.NewReader("x")}, ErrInvalidChunk},
		{"bad upload id", ChunkUploadInput{UploadID: "../etc", Filename: "a.png", Index: 0, Total: 1, Content: strings.NewReader("x")}, ErrInvalidChunk},
		{"declared too large", ChunkUploadInput{Filename: "a.png", Index: 0, Total: 1, Size: 17, Content: strings.NewReader("x")}, ErrChunkTooLarge},
		{"body too large", ChunkUploadInput{Filename: "a.png", Index: 0, Total: 1, Content: strings.NewReader(strings.Repeat("x", 17))}, ErrChunkTooLarge},
	}
	for _, tc := range cases {
		if _, err := svc.SaveChunk(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
	files, _ := svc.disk.AllFiles(context.Background(), "chunks")
	if len(files) != 0 {
		t.Fatalf("rejected chunks must not be stored: %v", files)
	}
}

func TestAbandonedChunksAreSwept(t *testing.T) {
	svc, sweeper := newTestUploadService(t)
	if _, err := svc.SaveChunk(ChunkUploadInput{UploadID: testUploadID, Filename: "a.zip", Index: 0, Total: 2, Content: strings.NewReader("x")}); err != nil {
		t.Fatalf("save chunk failed: %v", err)
	}
	report, err := sweeper.ClearExpired(context.Background(), time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Deleted != 1 {
		t.Fatalf("abandoned chunk should be swept, got %+v", report)
	}
}
