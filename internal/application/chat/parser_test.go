package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanResponse("```json\n{\"a\":1}\n```  "))
	assert.Equal(t, "hola", CleanResponse("  ```hola```"))
	assert.Equal(t, "", CleanResponse("```"))
}

func TestParseItinerary(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantTitle string
		wantDays  int
	}{
		{name: "整体是 JSON", input: `{"titulo":"Ruta","dias":[]}`, wantTitle: "Ruta"},
		{name: "前后有文字", input: `Aquí tienes: {"titulo":"Ruta","dias":[{"dia":"2"}]} ¡Disfruta!`, wantTitle: "Ruta", wantDays: 1},
		{name: "只有 dias", input: `{"dias":[{"dia":1},{"dia":2}]}`, wantDays: 2},
		{name: "没有花括号", input: "¿Cuántos días?", wantErr: true},
		{name: "括号不配对", input: `{"titulo":"x"`, wantErr: true},
		{name: "右括号在前", input: `} texto {`, wantErr: true},
		{name: "不是行程", input: `{"mensaje":"hola"}`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
		{name: "顶层是数组", input: `[{"titulo":"A","dias":[]}]`, wantErr: true},
		{name: "顶层是字符串", input: `"{\"titulo\":\"A\"}"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, it, err := ParseItinerary(tt.input)
			if tt.wantErr {
				var malformed *MalformedModelOutputError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tt.input, malformed.Raw)
				assert.Nil(t, it)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, fields)
			assert.Equal(t, tt.wantTitle, it.Title)
			assert.Len(t, it.Days, tt.wantDays)
		})
	}
}

func TestParseItinerary_TopLevelArrayIsNotObject(t *testing.T) {
	_, it, err := ParseItinerary(`[{"titulo":"A","dias":[]}]`)
	assert.Nil(t, it)
	assert.ErrorIs(t, err, errNotJSONObject)
}

func TestParseItinerary_DayNumbersAndCategories(t *testing.T) {
	_, it, err := ParseItinerary(`{"titulo":"T","dias":[{"dia":"3","itinerario":[{"category":"food"},{"category":"Nightlife"}]}]}`)
	require.NoError(t, err)
	assert.Equal(t, trip.DayNumber(3), it.Days[0].Number)
	assert.Equal(t, trip.CategoryFood, it.Days[0].Activities[0].Category)
	assert.Equal(t, trip.CategoryGeneral, it.Days[0].Activities[1].Category)
}

func TestIsFileAnalysis(t *testing.T) {
	assert.True(t, IsFileAnalysis("[ANÁLISIS DE PDF] vuelos"))
	assert.True(t, IsFileAnalysis("Resultado: análisis completado"))
	assert.False(t, IsFileAnalysis("Análisis de la situación"))
	assert.False(t, IsFileAnalysis(""))
}

func TestHumanTurn(t *testing.T) {
	got := humanTurn(trip.PhaseProfiling, trip.TripMemory{Destination: "Cádiz"}, "", "hola")
	want := "FASE_ACTUAL: 1\n\n" +
		"📋 CONTEXTO DEL VIAJE (MEMORIA):\n" +
		"- Destino: Cádiz\n" +
		"- Duración: NO_ESPECIFICADA\n" +
		"- Estilo/Presupuesto: NO_ESPECIFICADO\n\n" +
		"📎 CONTEXTO ADICIONAL:\n(sin contexto externo adicional)\n\n" +
		"💬 MENSAJE DEL USUARIO:\nhola\n"
	assert.Equal(t, want, got)
}

func TestSystemPromptListsCategories(t *testing.T) {
	assert.Contains(t, systemPrompt, `"Culture", "Food", "Hiking", "Relaxation", "Sightseeing", "General"`)
	assert.Contains(t, systemPrompt, `Actúa como "Atlas"`)
}
