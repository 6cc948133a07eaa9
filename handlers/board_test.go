package handlers

import (
	"net/http"
	"testing"

	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectiveBoardRoutes(t *testing.T) {
	api := setupAPI(t)
	_, chief := api.login("Chief Rahimi", models.RolePoliceChief)
	_, detective := api.login("Detective Cole", models.RoleDetective)
	_, sergeant := api.login("Sergeant Ahmadi", models.RoleSergeant)

	rec := api.do(http.MethodPost, "/api/cases", chief, services.CaseInput{Title: "Homicide", Description: "Body found by the river"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Case
	decode(t, rec, &created)
	base := "/api/cases/" + created.ID + "/board"

	var items []models.Evidence
	for _, title := range []string{"Muddy boots", "Bus ticket"} {
		rec := api.do(http.MethodPost, "/api/cases/"+created.ID+"/evidence", detective,
			services.EvidenceInput{EvidenceType: models.EvidenceTypeOther, Title: title})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var ev models.Evidence
		decode(t, rec, &ev)
		items = append(items, ev)
	}

	rec = api.do(http.MethodGet, base, detective, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, base, detective, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, base, detective, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPut, base, detective, map[string]interface{}{
		"board_data": map[string]interface{}{"zoom": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPut, base, detective, map[string]interface{}{"board_data": []int{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	connect := services.ConnectionInput{
		SourceEvidenceID: items[0].ID,
		TargetEvidenceID: items[1].ID,
		ConnectionType:   models.ConnectionTypeContradicts,
	}
	rec = api.do(http.MethodPost, base+"/connections", detective, connect)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, base+"/connections", detective, connect)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, base+"/connections", sergeant, connect)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, base, sergeant, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var board models.DetectiveBoard
	decode(t, rec, &board)
	assert.JSONEq(t, `{"zoom":2}`, string(board.BoardData))
	require.Len(t, board.Connections, 1)
	assert.Equal(t, models.ConnectionTypeContradicts, board.Connections[0].ConnectionType)
}
