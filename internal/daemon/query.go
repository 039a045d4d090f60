package daemon

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"reelreview/internal/api"
	"reelreview/internal/services"
)

// defaultNearWindowMs applies when near is given without window.
const defaultNearWindowMs = 1000

// parseListOptions reads comment query parameters:
//
//	resolved=true|false  priority=critical,important  q=text  category=name
//	tag=a&tag=b  sort=timestamp|created|priority  order=asc|desc
//	threaded=true  near=ms  window=ms
func parseListOptions(values url.Values) (api.ListOptions, error) {
	var opts api.ListOptions
	if raw := strings.TrimSpace(values.Get("resolved")); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			return api.ListOptions{}, queryError("resolved", raw)
		}
		opts.Resolved = &resolved
	}
	opts.Priorities = splitValues(values["priority"])
	opts.Tags = splitValues(values["tag"])
	opts.Search = strings.TrimSpace(values.Get("q"))
	opts.Category = strings.TrimSpace(values.Get("category"))
	opts.Sort = strings.TrimSpace(values.Get("sort"))

	switch order := strings.ToLower(strings.TrimSpace(values.Get("order"))); order {
	case "", "asc":
	case "desc":
		opts.Descending = true
	default:
		return api.ListOptions{}, queryError("order", order)
	}

	if raw := strings.TrimSpace(values.Get("threaded")); raw != "" {
		threaded, err := strconv.ParseBool(raw)
		if err != nil {
			return api.ListOptions{}, queryError("threaded", raw)
		}
		opts.Threaded = threaded
	}

	if raw := strings.TrimSpace(values.Get("near")); raw != "" {
		near, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || near < 0 {
			return api.ListOptions{}, queryError("near", raw)
		}
		opts.NearMs = &near
		opts.WindowMs = defaultNearWindowMs
	}
	if raw := strings.TrimSpace(values.Get("window")); raw != "" {
		window, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || window < 0 {
			return api.ListOptions{}, queryError("window", raw)
		}
		opts.WindowMs = window
	}
	return opts, nil
}

// splitValues flattens repeated and comma separated query values.
func splitValues(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryError(name, value string) error {
	return services.Wrap(services.ErrValidation, "daemon", "parse query", fmt.Sprintf("invalid %s %q", name, value), nil)
}
