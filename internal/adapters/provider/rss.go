package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/metrics"
)

// RSS читает официальный RSS-канал (портал деканата, лента кампуса) и
// реализует domain.ExternalProvider.
type RSS struct {
	name          string
	establishment domain.Establishment
	feedURL       string
	client        *http.Client
}

var _ domain.ExternalProvider = (*RSS)(nil)

// NewRSS создаёт провайдера для указанного канала.
func NewRSS(name string, establishment domain.Establishment, feedURL string) *RSS {
	return &RSS{
		name:          name,
		establishment: establishment,
		feedURL:       feedURL,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// SourceName возвращает читаемое имя источника.
func (r *RSS) SourceName() string { return r.name }

// TargetEstablishment возвращает кампус, к которому привязываются посты.
func (r *RSS) TargetEstablishment() domain.Establishment { return r.establishment }

// FetchLatest загружает и разбирает ленту. Любая сетевая ошибка или ошибка
// разбора возвращается как ошибка внешней интеграции.
func (r *RSS) FetchLatest(ctx context.Context) ([]domain.ExternalInboundPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.feedURL, nil)
	if err != nil {
		return nil, domain.ErrPostExternalIntegration(fmt.Sprintf("создание запроса к %s", r.name), err)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.ObserveNetworkRequest("rss", "fetch", r.name, start, err)
	if err != nil {
		return nil, domain.ErrPostExternalIntegration(fmt.Sprintf("запрос к %s", r.name), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, domain.ErrPostExternalIntegration(
			fmt.Sprintf("запрос к %s: статус %d: %s", r.name, resp.StatusCode, strings.TrimSpace(string(data))), nil)
	}

	items, err := ParseFeed(resp.Body)
	if err != nil {
		return nil, domain.ErrPostExternalIntegration(fmt.Sprintf("разбор ленты %s", r.name), err)
	}
	return items, nil
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// ParseFeed разбирает документ RSS 2.0 в транзитные записи. Идентификатором
// записи служит guid, при его отсутствии — ссылка.
func ParseFeed(r io.Reader) ([]domain.ExternalInboundPost, error) {
	var doc rssDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	posts := make([]domain.ExternalInboundPost, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		externalID := strings.TrimSpace(item.GUID)
		if externalID == "" {
			externalID = strings.TrimSpace(item.Link)
		}
		if externalID == "" {
			continue
		}
		posts = append(posts, domain.ExternalInboundPost{
			ExternalID: externalID,
			Title:      strings.TrimSpace(item.Title),
			Content:    strings.TrimSpace(item.Description),
			Date:       parsePubDate(item.PubDate),
			RawURL:     strings.TrimSpace(item.Link),
		})
	}
	return posts, nil
}

func parsePubDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}
