package messages

import (
	"testing"

	"github.com/plopgrizzly/ami/octree"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func TestMsgTypeString(t *testing.T) {
	require.Equal(t, "body_add_request", MsgTypeBodyAddRequest.String())
	require.Equal(t, "region_query_response", MsgTypeRegionQueryResponse.String())
	require.Equal(t, "unknown", MsgType(9999).String())
}

func TestBoxValidate(t *testing.T) {
	t.Run("ordered box is valid", func(t *testing.T) {
		b := Box{
			Min: Point{X: -1, Y: -1, Z: -1},
			Max: Point{X: 1, Y: 1, Z: 1},
		}
		require.NoError(t, b.Validate())
	})

	t.Run("degenerate box is valid", func(t *testing.T) {
		b := Box{
			Min: Point{X: 1, Y: 1, Z: 1},
			Max: Point{X: 1, Y: 1, Z: 1},
		}
		require.NoError(t, b.Validate())
	})

	t.Run("flipped axis is rejected", func(t *testing.T) {
		b := Box{
			Min: Point{X: 2, Y: -1, Z: -1},
			Max: Point{X: 1, Y: 1, Z: 1},
		}
		require.Error(t, b.Validate())
	})
}

func TestValidateExtents(t *testing.T) {
	require.NoError(t, ValidateExtents(Point{X: 1, Y: 0, Z: 2}))
	require.Error(t, ValidateExtents(Point{X: 1, Y: -0.5, Z: 2}))
}

func TestBoxConversion(t *testing.T) {
	in := octree.NewBBox(
		octree.NewVector3f(-1, -2, -3),
		octree.NewVector3f(1, 2, 3),
	)

	box := BoxFromBBox(in)
	require.NoError(t, box.Validate())
	require.Equal(t, in, box.BBox())
}

func TestRequestEnvelopeDecoding(t *testing.T) {
	body, err := json.Marshal(BodyAddRequest{
		Request: Request{Type: MsgTypeBodyAddRequest, RequestID: 7},
		Center:  Point{X: 1, Y: 2, Z: 3},
		Extents: Point{X: 0.5, Y: 0.5, Z: 0.5},
	})
	require.NoError(t, err)

	var envelope Request
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, MsgTypeBodyAddRequest, envelope.Type)
	require.Equal(t, uint32(7), envelope.RequestID)

	var req BodyAddRequest
	require.NoError(t, json.Unmarshal(body, &req))
	require.Equal(t, Point{X: 1, Y: 2, Z: 3}, req.Center)
}
