package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("only changed fields", func(t *testing.T) {
		before := Snapshot{"status": "AwaitingSupplierApproval", "note": "hi", "customer_id": "c"}
		after := Snapshot{"status": "Approved", "note": "hi", "customer_id": "c"}

		b, a, err := Diff(before, after)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"AwaitingSupplierApproval"}`, string(b))
		assert.JSONEq(t, `{"status":"Approved"}`, string(a))
	})

	t.Run("added and removed fields", func(t *testing.T) {
		before := Snapshot{"supplier_approver_id": nil, "gone": 1}
		after := Snapshot{"supplier_approver_id": "u1", "added": true}

		b, a, err := Diff(before, after)
		require.NoError(t, err)
		assert.JSONEq(t, `{"supplier_approver_id":null,"gone":1}`, string(b))
		assert.JSONEq(t, `{"supplier_approver_id":"u1","added":true}`, string(a))
	})

	t.Run("no changes", func(t *testing.T) {
		b, a, err := Diff(Snapshot{"x": 1}, Snapshot{"x": 1})
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Nil(t, a)
	})
}

func TestMarshal(t *testing.T) {
	raw, err := Marshal(Snapshot{"id": "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(raw))

	raw, err = Marshal(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
