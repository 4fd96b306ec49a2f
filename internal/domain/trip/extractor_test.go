package trip

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractor_Extract(t *testing.T) {
	e := NewDefaultExtractor()

	tests := []struct {
		name     string
		input    string
		expected Attributes
	}{
		{
			name:     "空输入",
			input:    "",
			expected: Attributes{},
		},
		{
			name:     "只有空白",
			input:    "   \n\t",
			expected: Attributes{},
		},
		{
			name:  "完整场景",
			input: "Quiero un viaje a Sevilla de 5 días, estilo relax",
			expected: Attributes{
				Destination: "Sevilla",
				Duration:    "5 días",
				Style:       "relax",
			},
		},
		{
			name:     "不带重音的天数",
			input:    "3 dias en Madrid",
			expected: Attributes{Destination: "Madrid", Duration: "3 días"},
		},
		{
			name:     "数字和 día 之间无空格",
			input:    "Un plan de 10día para Bilbao",
			expected: Attributes{Destination: "Bilbao", Duration: "10 días"},
		},
		{
			name:     "多个城市按优先级取第一个",
			input:    "Barcelona o Madrid, no sé",
			expected: Attributes{Destination: "Madrid"},
		},
		{
			name:     "多个风格按优先级取第一个",
			input:    "algo cultural pero con relax",
			expected: Attributes{Style: "relax"},
		},
		{
			name:     "多词城市标题化",
			input:    "quiero ir a san sebastián",
			expected: Attributes{Destination: "San Sebastián"},
		},
		{
			name:     "未知城市回退到 viaje a",
			input:    "Planeo un viaje a Oporto con amigos",
			expected: Attributes{Destination: "Oporto"},
		},
		{
			name:     "回退保留结尾重音",
			input:    "Un viaje a Panamá",
			expected: Attributes{Destination: "Panamá"},
		},
		{
			name:     "重音风格",
			input:    "Viaje gastronómico por Valencia",
			expected: Attributes{Destination: "Valencia", Style: "gastronómico"},
		},
		{
			name:     "无任何匹配",
			input:    "Hola, ¿qué tal?",
			expected: Attributes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.input))
		})
	}
}

func TestExtractor_KnownCityWithDuration(t *testing.T) {
	e := NewDefaultExtractor()

	for _, city := range DefaultRules().Cities {
		got := e.Extract("Quiero ir a " + city + " unos 4 días")
		assert.NotEmpty(t, got.Destination, city)
		assert.Equal(t, "4 días", got.Duration, city)
	}
}

func TestExtractor_SetRules(t *testing.T) {
	e := NewDefaultExtractor()
	assert.Equal(t, "", e.Extract("me apetece Lisboa").Destination)

	e.SetRules(RuleTable{
		Styles: []string{"  Mochilero "},
		Cities: []string{"lisboa", ""},
	})

	got := e.Extract("me apetece Lisboa, plan mochilero")
	assert.Equal(t, "Lisboa", got.Destination)
	assert.Equal(t, "mochilero", got.Style)
	assert.Equal(t, []string{"lisboa"}, e.Rules().Cities)
}

func TestExtractor_ConcurrentUse(t *testing.T) {
	e := NewDefaultExtractor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				e.SetRules(DefaultRules())
			}
			got := e.Extract("viaje a granada de 2 días")
			assert.Equal(t, "Granada", got.Destination)
		}(i)
	}
	wg.Wait()
}
