package pricing

import "testing"

func TestSessionPriceVideoBaseline(t *testing.T) {
	quote, err := SessionPrice(12000, 500, TypeVideo, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.USDMinor != 12000 {
		t.Fatalf("expected 12000, got %d", quote.USDMinor)
	}
	if quote.Tokens != 500 {
		t.Fatalf("expected 500 tokens, got %d", quote.Tokens)
	}
}

func TestSessionPriceAudioShort(t *testing.T) {
	// 120.00 x 0.85 x 0.6 = 61.20
	quote, err := SessionPrice(12000, 500, TypeAudio, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.USDMinor != 6120 {
		t.Fatalf("expected 6120, got %d", quote.USDMinor)
	}
	if quote.Tokens != 300 {
		t.Fatalf("expected 300 tokens, got %d", quote.Tokens)
	}
}

func TestSessionPriceChatExtended(t *testing.T) {
	quote, err := SessionPrice(10000, 400, TypeChat, 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.USDMinor != 10500 {
		t.Fatalf("expected 10500, got %d", quote.USDMinor)
	}
	if quote.Tokens != 600 {
		t.Fatalf("expected 600 tokens, got %d", quote.Tokens)
	}
}

func TestSessionPriceRejectsUnknownDuration(t *testing.T) {
	if _, err := SessionPrice(12000, 500, TypeVideo, 45); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := SessionPrice(12000, 500, TypeVideo, 0); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestSessionPriceRejectsUnknownType(t *testing.T) {
	if _, err := SessionPrice(12000, 500, "hologram", 50); err != ErrInvalidSessionType {
		t.Fatalf("expected ErrInvalidSessionType, got %v", err)
	}
}

func TestSessionPriceRejectsNonPositiveRates(t *testing.T) {
	if _, err := SessionPrice(0, 500, TypeVideo, 50); err != ErrInvalidRate {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := SessionPrice(12000, -1, TypeVideo, 50); err != ErrInvalidRate {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestSessionPriceDeterministic(t *testing.T) {
	first, err := SessionPrice(15000, 600, TypeAudio, 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := SessionPrice(15000, 600, TypeAudio, 75)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("quote changed between calls: %#v vs %#v", again, first)
		}
	}
}
