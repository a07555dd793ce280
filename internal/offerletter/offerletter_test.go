package offerletter

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/docparse"
)

type fakeLister struct {
	messages []*basehiring.Message
	err      error
}

func (f *fakeLister) ListMessages(token, candidateID string) ([]*basehiring.Message, error) {
	return f.messages, f.err
}

type fakeFetcher struct {
	byURL map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f.byURL[url]
	if !ok {
		return nil, errors.New("not reachable")
	}
	return data, nil
}

type fakeExtractor struct {
	byKind map[docparse.Kind]string
}

func (f *fakeExtractor) Extract(_ []byte, kind docparse.Kind) (string, error) {
	text, ok := f.byKind[kind]
	if !ok {
		return "", docparse.ErrUnsupported
	}
	return text, nil
}

func attachment(name, src string) *basehiring.Attachment {
	return &basehiring.Attachment{Name: name, Src: src}
}

func TestFindPrefersAttachmentsOverLinks(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{messages: []*basehiring.Message{
		{
			ID:            "m1",
			Content:       `see <a href="https://cdn.example/linked.pdf">linked copy</a>`,
			HasAttachment: 1,
			Attachments:   []*basehiring.Attachment{attachment("offer.pdf", "https://cdn.example/offer.pdf")},
		},
	}}
	fetch := &fakeFetcher{byURL: map[string][]byte{
		"https://cdn.example/offer.pdf":  []byte("%PDF"),
		"https://cdn.example/linked.pdf": []byte("%PDF"),
	}}
	extract := &fakeExtractor{byKind: map[docparse.Kind]string{docparse.KindPDF: "We are pleased to offer"}}

	finder := NewFinder(lister, "token", fetch, extract, zap.NewNop())
	letter, err := finder.Find(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter == nil {
		t.Fatal("expected a letter")
	}
	if letter.URL != "https://cdn.example/offer.pdf" || letter.Name != "offer.pdf" {
		t.Fatalf("attachment must win over the linked copy, got %q", letter.URL)
	}
	if letter.Text != "We are pleased to offer" {
		t.Fatalf("unexpected text: %q", letter.Text)
	}
}

func TestFindFallsBackToLinksInContent(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{messages: []*basehiring.Message{
		{ID: "m1", Content: `attached here: <a href="https://cdn.example/offer.docx">offer.docx</a>`},
	}}
	fetch := &fakeFetcher{byURL: map[string][]byte{"https://cdn.example/offer.docx": []byte("PK")}}
	extract := &fakeExtractor{byKind: map[docparse.Kind]string{docparse.KindDOCX: "offer terms"}}

	finder := NewFinder(lister, "token", fetch, extract, zap.NewNop())
	letter, err := finder.Find(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter == nil || letter.Name != "offer.docx" {
		t.Fatalf("expected the linked docx, got %+v", letter)
	}
}

func TestFindScansNewestFirstAndSkipsFailures(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{messages: []*basehiring.Message{
		{
			ID:            "newest",
			HasAttachment: 1,
			Attachments:   []*basehiring.Attachment{attachment("broken.pdf", "https://cdn.example/broken.pdf")},
		},
		{
			ID:            "older",
			HasAttachment: 1,
			Attachments:   []*basehiring.Attachment{attachment("signed.pdf", "https://cdn.example/signed.pdf")},
		},
	}}
	fetch := &fakeFetcher{byURL: map[string][]byte{"https://cdn.example/signed.pdf": []byte("%PDF")}}
	extract := &fakeExtractor{byKind: map[docparse.Kind]string{docparse.KindPDF: "signed offer"}}

	finder := NewFinder(lister, "token", fetch, extract, zap.NewNop())
	letter, err := finder.Find(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter == nil || letter.Name != "signed.pdf" {
		t.Fatalf("expected the older extractable document, got %+v", letter)
	}
}

func TestFindNoDocumentIsNotAnError(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{messages: []*basehiring.Message{
		{ID: "m1", Content: "just a note, nothing attached"},
	}}

	finder := NewFinder(lister, "token", &fakeFetcher{}, docparse.Unsupported{}, zap.NewNop())
	letter, err := finder.Find(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter != nil {
		t.Fatalf("expected no letter, got %+v", letter)
	}
}

func TestFindPropagatesListingError(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("upstream down")}
	finder := NewFinder(lister, "token", &fakeFetcher{}, docparse.Unsupported{}, zap.NewNop())

	if _, err := finder.Find(context.Background(), "c1"); err == nil {
		t.Fatal("expected the listing failure to surface")
	}
}
