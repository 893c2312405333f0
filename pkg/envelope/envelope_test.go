package envelope

import (
	"testing"

	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/stretchr/testify/require"
)

type listingStub struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestDecodeDataUnwrapsEnvelope(t *testing.T) {
	body := []byte(`{"success":true,"data":{"id":"L1","title":"Heirloom Tomatoes"}}`)

	got, err := DecodeData[listingStub](body)
	require.NoError(t, err)
	require.Equal(t, "L1", got.ID)
	require.Equal(t, "Heirloom Tomatoes", got.Title)
}

func TestDecodeDataServerFailure(t *testing.T) {
	body := []byte(`{"success":false,"message":"listing unavailable"}`)

	_, err := DecodeData[listingStub](body)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	require.Contains(t, err.Error(), "listing unavailable")
}

func TestDecodeDataMalformedBody(t *testing.T) {
	_, err := DecodeData[listingStub]([]byte(`{"success":tru`))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDecode, pkgerrors.CodeOf(err))
}

func TestDecodePageWrappedShape(t *testing.T) {
	body := []byte(`{"success":true,"data":{"content":[{"id":"L1"},{"id":"L2"}],"totalPages":3,"totalElements":55}}`)

	page, err := DecodePage[listingStub](body)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, int64(55), page.TotalElements)
}

func TestDecodePageBareShape(t *testing.T) {
	body := []byte(`{"content":[{"id":"L9"}],"totalPages":1,"totalElements":1}`)

	page, err := DecodePage[listingStub](body)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, "L9", page.Content[0].ID)
}

func TestDecodePageEmptyContentNormalized(t *testing.T) {
	page, err := DecodePage[listingStub]([]byte(`{"totalPages":0,"totalElements":0}`))
	require.NoError(t, err)
	require.NotNil(t, page.Content)
	require.Empty(t, page.Content)
}

func TestErrorMessageShapes(t *testing.T) {
	require.Equal(t, "stock exhausted", ErrorMessage([]byte(`{"success":false,"message":"stock exhausted"}`)))
	require.Equal(t, "bad token", ErrorMessage([]byte(`{"error":{"code":"UNAUTHORIZED","message":"bad token"}}`)))
	require.Equal(t, "", ErrorMessage([]byte(`not-json`)))
}
