package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Грамматика callback-данных: "action:entity:id" с необязательным
// суффиксом "@page". Telegram ограничивает payload 64 байтами, поэтому
// в id всегда кладется UUID или короткое значение, никогда имя.
type Callback struct {
	Action string
	Entity string
	ID     string
	Page   int
}

var ErrBadCallback = errors.New("malformed callback data")

func FormatCallback(c Callback) string {
	base := fmt.Sprintf("%s:%s:%s", c.Action, c.Entity, c.ID)
	if c.Page > 0 {
		return fmt.Sprintf("%s@%d", base, c.Page)
	}
	return base
}

func ParseCallback(data string) (Callback, error) {
	var c Callback

	body := data
	if at := strings.LastIndex(data, "@"); at >= 0 {
		page, err := strconv.Atoi(data[at+1:])
		if err != nil || page < 0 {
			return c, fmt.Errorf("%w: bad page in %q", ErrBadCallback, data)
		}
		c.Page = page
		body = data[:at]
	}

	parts := strings.SplitN(body, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return c, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}

	c.Action = parts[0]
	c.Entity = parts[1]
	c.ID = parts[2]
	return c, nil
}
