package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wanda-feed/internal/domain"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Portail du décanat</title>
    <item>
      <guid>urn:decanat:1</guid>
      <title>Rentrée académique 2025</title>
      <description>La rentrée est fixée au 15 septembre.</description>
      <link>https://decanat.example/1</link>
      <pubDate>Mon, 01 Sep 2025 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Sans guid</title>
      <link>https://decanat.example/2</link>
    </item>
    <item>
      <title>Сирота без идентификатора</title>
    </item>
  </channel>
</rss>`

func TestParseFeed(t *testing.T) {
	items, err := ParseFeed(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("запись без идентификатора пропускается, ожидали 2, получили %d", len(items))
	}
	if items[0].ExternalID != "urn:decanat:1" {
		t.Fatalf("guid служит идентификатором, получили %q", items[0].ExternalID)
	}
	want := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	if !items[0].Date.Equal(want) {
		t.Fatalf("дата не разобрана: %v", items[0].Date)
	}
	if items[1].ExternalID != "https://decanat.example/2" {
		t.Fatalf("при отсутствии guid идентификатором служит ссылка, получили %q", items[1].ExternalID)
	}
}

func TestParseFeedInvalidXML(t *testing.T) {
	if _, err := ParseFeed(strings.NewReader("не xml вовсе")); err == nil {
		t.Fatalf("ожидали ошибку разбора")
	}
}

func TestParsePubDateFallback(t *testing.T) {
	before := time.Now().UTC()
	got := parsePubDate("совсем не дата")
	if got.Before(before.Add(-time.Minute)) {
		t.Fatalf("нераспознанная дата заменяется текущим временем, получили %v", got)
	}
}

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	rss := NewRSS("decanat-iut", domain.EstablishmentIUT, srv.URL)
	items, err := rss.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(items))
	}
}

func TestFetchLatestBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rss := NewRSS("decanat-iut", domain.EstablishmentIUT, srv.URL)
	_, err := rss.FetchLatest(context.Background())
	if domain.KindOf(err) != domain.KindPostExternalIntegration {
		t.Fatalf("ожидали ошибку внешней интеграции, получили %v", err)
	}
}

func TestParseFeeds(t *testing.T) {
	providers, err := ParseFeeds("decanat-iut,IUT,https://decanat.example/rss; fgi-news , FGI , https://fgi.example/rss")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("ожидали 2 источника, получили %d", len(providers))
	}
	if providers[0].SourceName() != "decanat-iut" || providers[0].TargetEstablishment() != domain.EstablishmentIUT {
		t.Fatalf("первый источник разобран неверно")
	}
	if providers[1].SourceName() != "fgi-news" || providers[1].TargetEstablishment() != domain.EstablishmentFGI {
		t.Fatalf("второй источник разобран неверно")
	}
}

func TestParseFeedsInvalid(t *testing.T) {
	if _, err := ParseFeeds("только-имя,IUT"); !errors.Is(err, ErrFeedsInvalid) {
		t.Fatalf("ожидали ErrFeedsInvalid, получили %v", err)
	}
	if _, err := ParseFeeds("a,,https://x"); !errors.Is(err, ErrFeedsInvalid) {
		t.Fatalf("пустой кампус недопустим, получили %v", err)
	}
}

func TestParseFeedsEmpty(t *testing.T) {
	providers, err := ParseFeeds("  ")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if providers != nil {
		t.Fatalf("пустая конфигурация даёт пустой список")
	}
}
