package capsulevault

import "testing"

func TestNewCapsuleQuery_Defaults(t *testing.T) {
	q := NewCapsuleQuery()

	if q.Limit != 50 {
		t.Errorf("Limit = %d, want 50", q.Limit)
	}
	if q.Type != "" || q.Status != "" || q.MineOnly || q.Offset != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", q)
	}
}

func TestCapsuleQuery_Builder(t *testing.T) {
	q := NewCapsuleQuery().
		WithType(ConditionMultisig).
		WithStatus("locked").
		Mine().
		WithLimit(10).
		WithOffset(20)

	if q.Type != ConditionMultisig {
		t.Errorf("Type = %s", q.Type)
	}
	if q.Status != "locked" {
		t.Errorf("Status = %s", q.Status)
	}
	if !q.MineOnly {
		t.Error("MineOnly = false")
	}
	if q.Limit != 10 || q.Offset != 20 {
		t.Errorf("Limit/Offset = %d/%d, want 10/20", q.Limit, q.Offset)
	}
}

func TestCapsuleQuery_BuilderDoesNotMutateReceiver(t *testing.T) {
	base := NewCapsuleQuery()
	_ = base.WithType(ConditionPayment).WithLimit(1)

	if base.Type != "" || base.Limit != 50 {
		t.Errorf("builder mutated receiver: %+v", base)
	}
}

func TestConditionTypes(t *testing.T) {
	tests := []struct {
		ct   ConditionType
		want string
	}{
		{ConditionTime, "time"},
		{ConditionMultisig, "multisig"},
		{ConditionPayment, "payment"},
	}

	for _, tt := range tests {
		if string(tt.ct) != tt.want {
			t.Errorf("ConditionType = %s, want %s", tt.ct, tt.want)
		}
	}
}
