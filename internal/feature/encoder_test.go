package feature

import (
	"reflect"
	"testing"

	"github.com/luxestream/recommender/internal/protocol"
)

func sampleCorpus() []protocol.Movie {
	return []protocol.Movie{
		{MovieID: "m1", Title: "Inception", Genre: "Sci-Fi", Language: "English", Director: "Christopher Nolan", Rating: 8.8},
		{MovieID: "m2", Title: "Parasite", Genre: "Thriller", Language: "Korean", Director: "Bong Joon-ho", Rating: 8.6},
		{MovieID: "m3", Title: "Dunkirk", Genre: "Action", Language: "English", Director: "Christopher Nolan", Rating: 7.8},
	}
}

func TestBuildVocabulary_SortedAndDeduplicated(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())

	wantGenres := []string{"action", "sci-fi", "thriller"}
	if !reflect.DeepEqual(vocab.Genres, wantGenres) {
		t.Errorf("expected genres %v, got %v", wantGenres, vocab.Genres)
	}

	wantLanguages := []string{"english", "korean"}
	if !reflect.DeepEqual(vocab.Languages, wantLanguages) {
		t.Errorf("expected languages %v, got %v", wantLanguages, vocab.Languages)
	}

	// Nolan appears twice but is stored once.
	wantDirectors := []string{"bong joon-ho", "christopher nolan"}
	if !reflect.DeepEqual(vocab.Directors, wantDirectors) {
		t.Errorf("expected directors %v, got %v", wantDirectors, vocab.Directors)
	}
}

func TestBuildVocabulary_SkipsEmptyValues(t *testing.T) {
	vocab := BuildVocabulary([]protocol.Movie{
		{MovieID: "m1", Title: "Untagged", Rating: 5},
		{MovieID: "m2", Title: "Spaces", Genre: "  ", Rating: 5},
	})

	if len(vocab.Genres) != 0 || len(vocab.Languages) != 0 || len(vocab.Directors) != 0 {
		t.Errorf("expected empty vocabulary, got %+v", vocab)
	}
}

func TestVocabulary_Dimension(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())

	// 3 genres + 2 languages + 2 directors, each with an unknown slot,
	// plus the rating component.
	want := (3 + 1) + (2 + 1) + (2 + 1) + 1
	if vocab.Dimension() != want {
		t.Errorf("expected dimension %d, got %d", want, vocab.Dimension())
	}
}

func TestEncode_Deterministic(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())
	movie := sampleCorpus()[0]

	first := vocab.Encode(movie)
	second := vocab.Encode(movie)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different vectors:\n%v\n%v", first, second)
	}

	if len(first) != vocab.Dimension() {
		t.Errorf("expected vector length %d, got %d", vocab.Dimension(), len(first))
	}
}

func TestEncode_CaseInsensitiveLookup(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())

	lower := vocab.Encode(protocol.Movie{MovieID: "x", Genre: "sci-fi", Rating: 5})
	upper := vocab.Encode(protocol.Movie{MovieID: "x", Genre: "SCI-FI", Rating: 5})

	if !reflect.DeepEqual(lower, upper) {
		t.Error("case variants of the same genre encoded differently")
	}
}

func TestEncode_UnknownBucket(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())

	unknown := vocab.Encode(protocol.Movie{MovieID: "x", Genre: "Opera", Rating: 5})
	missing := vocab.Encode(protocol.Movie{MovieID: "x", Rating: 5})

	// Both an unseen and an absent genre land in slot 0 of the genre block.
	if unknown[0] != 1 {
		t.Errorf("unseen genre should hit the unknown bucket, vector: %v", unknown)
	}
	if missing[0] != 1 {
		t.Errorf("missing genre should hit the unknown bucket, vector: %v", missing)
	}

	known := vocab.Encode(protocol.Movie{MovieID: "x", Genre: "Action", Rating: 5})
	if known[0] != 0 || known[1] != 1 {
		t.Errorf("known genre 'action' should hit slot 1, vector: %v", known)
	}
}

func TestEncode_OneHotInvariant(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())
	vec := vocab.Encode(sampleCorpus()[1])

	// Exactly one slot per categorical block is set.
	genreBlock := vec[0 : len(vocab.Genres)+1]
	sum := 0.0
	for _, v := range genreBlock {
		sum += v
	}
	if sum != 1 {
		t.Errorf("genre block should have exactly one hot slot, got %v", genreBlock)
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		rating float64
		want   float64
	}{
		{0, 0},
		{-1, 0},
		{5, 0.5},
		{8.8, 0.88},
		{10, 1},
		{12, 1},
	}

	for _, tt := range tests {
		got := NormalizeRating(tt.rating)
		if got != tt.want {
			t.Errorf("NormalizeRating(%.1f) = %f, want %f", tt.rating, got, tt.want)
		}
	}
}

func TestEncode_RatingComponent(t *testing.T) {
	vocab := BuildVocabulary(sampleCorpus())
	vec := vocab.Encode(protocol.Movie{MovieID: "x", Rating: 7.0})

	if got := vec[len(vec)-1]; got != 0.7 {
		t.Errorf("expected rating component 0.7, got %f", got)
	}
}
