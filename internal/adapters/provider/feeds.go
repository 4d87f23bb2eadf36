package provider

import (
	"errors"
	"fmt"
	"strings"

	"wanda-feed/internal/domain"
)

// ErrFeedsInvalid возвращается при некорректном описании лент.
var ErrFeedsInvalid = errors.New("некорректное описание лент")

// ParseFeeds разбирает переменную окружения SYNC_FEEDS: записи вида
// "имя,кампус,url", разделённые точкой с запятой.
func ParseFeeds(raw string) ([]domain.ExternalProvider, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var providers []domain.ExternalProvider
	for _, entry := range strings.Split(trimmed, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ",", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrFeedsInvalid, entry)
		}
		name := strings.TrimSpace(parts[0])
		establishment := strings.TrimSpace(parts[1])
		feedURL := strings.TrimSpace(parts[2])
		if name == "" || establishment == "" || feedURL == "" {
			return nil, fmt.Errorf("%w: %q", ErrFeedsInvalid, entry)
		}
		providers = append(providers, NewRSS(name, domain.Establishment(establishment), feedURL))
	}
	return providers, nil
}
