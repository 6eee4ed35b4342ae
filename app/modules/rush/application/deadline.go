package rushservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var deadlineParser = newDeadlineParser()

func newDeadlineParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDeadline reads an RFC3339 timestamp or an English phrase such as
// "next friday at 9pm", resolved relative to now.
func ParseDeadline(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("deadline is required")
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	r, err := deadlineParser.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse deadline %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize deadline %q", input)
	}
	return r.Time.UTC(), nil
}
