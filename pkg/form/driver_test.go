package form

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/robotorder/pkg/browser"
	"github.com/entrhq/robotorder/pkg/orders"
)

// fakePage records calls and fails the selectors it is told to fail.
type fakePage struct {
	calls        []string
	modalVisible bool
	visibleErr   error
	failOn       map[string]error
}

func (p *fakePage) fail(selector string) error {
	return p.failOn[selector]
}

func (p *fakePage) Click(selector string, timeout time.Duration) error {
	p.calls = append(p.calls, "click "+selector)
	if selector == DefaultSelectors.ModalConfirm {
		p.modalVisible = false
	}
	return p.fail(selector)
}

func (p *fakePage) Fill(selector, value string, timeout time.Duration) error {
	p.calls = append(p.calls, fmt.Sprintf("fill %s=%s", selector, value))
	return p.fail(selector)
}

func (p *fakePage) SelectByLabel(selector, label string, timeout time.Duration) error {
	p.calls = append(p.calls, fmt.Sprintf("select %s=%s", selector, label))
	return p.fail(selector)
}

func (p *fakePage) IsVisible(selector string) (bool, error) {
	p.calls = append(p.calls, "visible? "+selector)
	if p.visibleErr != nil {
		return false, p.visibleErr
	}
	return selector == DefaultSelectors.ModalConfirm && p.modalVisible, nil
}

func (p *fakePage) WaitFor(selector string, state browser.WaitState, timeout time.Duration) error {
	p.calls = append(p.calls, fmt.Sprintf("wait %s %s", selector, state))
	return p.fail(selector)
}

func timeoutOn(selector string) error {
	return &browser.TimeoutError{Selector: selector, Action: "wait for visible", After: DefaultTimeout}
}

func row(number, head, body string) orders.Row {
	return orders.Row{
		"Order number": number,
		"Head":         head,
		"Body":         body,
		"Legs":         "3",
		"Address":      "Address 123",
	}
}

func readyToFill(t *testing.T, page *fakePage) *Driver {
	t.Helper()
	d := NewDriver(page)
	d.DismissModal(context.Background())
	page.calls = nil
	return d
}

func TestFillSelectsCatalogParts(t *testing.T) {
	for code := 1; code <= 6; code++ {
		c := fmt.Sprint(code)
		t.Run(c, func(t *testing.T) {
			page := &fakePage{}
			d := readyToFill(t, page)

			require.NoError(t, d.Fill(context.Background(), row("7", c, c)))

			head, _ := orders.DefaultCatalog.HeadPart(c)
			body, _ := orders.DefaultCatalog.BodyPart(c)
			want := []string{
				"select #head=" + head,
				"click " + fmt.Sprintf(DefaultSelectors.BodyRadio, body),
				"fill " + DefaultSelectors.LegsInput + "=3",
				"fill #address=Address 123",
			}
			if diff := cmp.Diff(want, page.calls); diff != "" {
				t.Errorf("page calls mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, StateFormFilled, d.State())
		})
	}
}

func TestFillUnmappedCode(t *testing.T) {
	tests := []struct {
		name string
		head string
		body string
		kind orders.PartKind
	}{
		{"head out of range", "7", "1", orders.PartHead},
		{"body out of range", "1", "0", orders.PartBody},
		{"head not numeric", "x", "1", orders.PartHead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{}
			d := readyToFill(t, page)

			err := d.Fill(context.Background(), row("2", tt.head, tt.body))

			var lookupErr *orders.LookupError
			require.True(t, errors.As(err, &lookupErr), "got %v", err)
			assert.Equal(t, tt.kind, lookupErr.Kind)
			assert.Empty(t, page.calls, "no control may be touched before both codes resolve")
			assert.Equal(t, StateModalChecked, d.State())
		})
	}
}

func TestFillPageFailure(t *testing.T) {
	page := &fakePage{failOn: map[string]error{"#address": errors.New("element is detached")}}
	d := readyToFill(t, page)

	err := d.Fill(context.Background(), row("3", "2", "2"))

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepFill, stepErr.Step)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, StateModalChecked, d.State())
}

func TestDismissModal(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		page := &fakePage{}
		d := NewDriver(page)

		result := d.DismissModal(context.Background())
		assert.Equal(t, ModalAbsent, result.Outcome)
		assert.NoError(t, result.Err)
		assert.Equal(t, []string{"visible? " + DefaultSelectors.ModalConfirm}, page.calls)
		assert.Equal(t, StateModalChecked, d.State())
	})

	t.Run("dismissed", func(t *testing.T) {
		page := &fakePage{modalVisible: true}
		d := NewDriver(page)

		result := d.DismissModal(context.Background())
		assert.Equal(t, ModalDismissed, result.Outcome)
		assert.Contains(t, page.calls, "click "+DefaultSelectors.ModalConfirm)
		assert.Contains(t, page.calls, "wait "+DefaultSelectors.ModalConfirm+" hidden")
	})

	t.Run("still visible after confirm", func(t *testing.T) {
		page := &fakePage{
			modalVisible: true,
			failOn:       map[string]error{DefaultSelectors.ModalConfirm: timeoutOn(DefaultSelectors.ModalConfirm)},
		}
		d := NewDriver(page)

		result := d.DismissModal(context.Background())
		assert.Equal(t, ModalDismissFailed, result.Outcome)
		assert.Error(t, result.Err)
		// Best effort: the caller may still fill the form
		assert.Equal(t, StateModalChecked, d.State())
		assert.NoError(t, d.Fill(context.Background(), row("1", "1", "1")))
	})

	t.Run("visibility check fails", func(t *testing.T) {
		page := &fakePage{visibleErr: errors.New("target closed")}
		d := NewDriver(page)

		result := d.DismissModal(context.Background())
		assert.Equal(t, ModalDismissFailed, result.Outcome)
		assert.EqualError(t, result.Err, "target closed")
	})
}

func TestPreviewAndSubmitTimeouts(t *testing.T) {
	page := &fakePage{failOn: map[string]error{"#receipt": timeoutOn("#receipt")}}
	d := readyToFill(t, page)
	ctx := context.Background()

	require.NoError(t, d.Fill(ctx, row("4", "4", "4")))
	require.NoError(t, d.Preview(ctx))
	assert.Equal(t, StatePreviewed, d.State())

	err := d.Submit(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepSubmit, stepErr.Step)
	assert.Equal(t, StatePreviewed, d.State())
}

func TestFullWorkflowAndReset(t *testing.T) {
	page := &fakePage{}
	d := NewDriver(page, WithTimeout(time.Second))
	ctx := context.Background()

	d.DismissModal(ctx)
	require.NoError(t, d.Fill(ctx, row("5", "5", "6")))
	require.NoError(t, d.Preview(ctx))
	require.NoError(t, d.Submit(ctx))
	require.NoError(t, d.OrderAnother(ctx))
	assert.Equal(t, StateReset, d.State())

	assert.Contains(t, page.calls, "wait #robot-preview-image visible")
	assert.Contains(t, page.calls, "wait #receipt visible")
	assert.Contains(t, page.calls, "click #order-another")

	d.Begin()
	assert.Equal(t, StateIdle, d.State())
}

func TestOutOfOrderSteps(t *testing.T) {
	ctx := context.Background()
	d := NewDriver(&fakePage{})

	err := d.Preview(ctx)
	var transitionErr *TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StateIdle, transitionErr.From)
	assert.Equal(t, StatePreviewed, transitionErr.To)

	err = d.Fill(ctx, row("1", "1", "1"))
	assert.True(t, errors.As(err, &transitionErr))

	d.DismissModal(ctx)
	result := d.DismissModal(ctx)
	assert.Equal(t, ModalDismissFailed, result.Outcome)
	assert.True(t, errors.As(result.Err, &transitionErr))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{}
	d := NewDriver(page)
	result := d.DismissModal(ctx)
	assert.Equal(t, ModalDismissFailed, result.Outcome)

	err := d.Fill(ctx, row("1", "1", "1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.calls)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StateModalChecked))
	assert.True(t, CanTransition(StateSubmitted, StateReset))
	assert.True(t, CanTransition(StatePreviewed, StateIdle))
	assert.False(t, CanTransition(StateIdle, StateSubmitted))
	assert.False(t, CanTransition(StateReset, StateModalChecked))
	assert.Equal(t, "form_filled", StateFormFilled.String())
	assert.Equal(t, "dismiss_failed", ModalDismissFailed.String())
}
