package digest

import (
	"errors"
	"time"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/selector"
	"github.com/ppiankov/newsdesk/internal/source"
)

func makeRun() *aggregate.Run {
	return &aggregate.Run{
		ID:       "run-1",
		Duration: 1500 * time.Millisecond,
		Results: []aggregate.Result{
			{
				Keyword: "해운",
				Items: []source.Item{
					{
						Title:       "<b>해운</b> &amp; 물류 운임 상승",
						Link:        "https://example.com/a1",
						PublishedAt: "Mon, 13 Oct 2025 01:00:00 GMT",
						Source:      "해사신문",
						Description: "<p>컨테이너 운임이 &quot;급등&quot;</p>",
					},
					{Title: "부산항 물동량", Link: "https://example.com/a2"},
				},
			},
			{
				Keyword: "항만",
				Err:     &source.Error{Kind: source.KindResponse, Err: errors.New("HTTP 500")},
			},
			{
				Keyword: "물류",
				Items:   []source.Item{{Title: "Logistics &lt;update&gt;", Link: "https://example.com/c1", Source: "Daily"}},
			},
		},
	}
}

func fullInput() Input {
	run := makeRun()
	return Build(run, selector.ModeFull, selector.Partition(run.Pool()), nil)
}

func sampleInput(k int) Input {
	run := makeRun()
	sample := selector.NewSeededSampler(1, 2).Sample(run.Pool(), k)
	return Build(run, selector.ModeSample, nil, sample)
}
