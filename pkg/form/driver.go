package form

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/robotorder/pkg/browser"
	"github.com/entrhq/robotorder/pkg/logging"
	"github.com/entrhq/robotorder/pkg/orders"
)

// DefaultTimeout bounds every wait the driver performs.
const DefaultTimeout = 10 * time.Second

// Page is the subset of a browser session the driver uses.
type Page interface {
	Click(selector string, timeout time.Duration) error
	Fill(selector, value string, timeout time.Duration) error
	SelectByLabel(selector, label string, timeout time.Duration) error
	IsVisible(selector string) (bool, error)
	WaitFor(selector string, state browser.WaitState, timeout time.Duration) error
}

// Selectors locates the controls of the order form.
type Selectors struct {
	ModalConfirm  string
	HeadSelect    string
	BodyRadio     string // fmt pattern, %s is the body part label
	LegsInput     string
	AddressInput  string
	PreviewButton string
	PreviewImage  string
	OrderButton   string
	Receipt       string
	OrderAnother  string
}

// DefaultSelectors matches the RobotSpareBin order page.
var DefaultSelectors = Selectors{
	ModalConfirm:  "xpath=//*[@id='root']/div/div[2]/div/div/div/div/div/button[1]",
	HeadSelect:    "#head",
	BodyRadio:     "xpath=//label[contains(text(), '%s')]/input",
	LegsInput:     "xpath=//label[contains(text(), 'Legs:')]/following-sibling::input",
	AddressInput:  "#address",
	PreviewButton: "#preview",
	PreviewImage:  "#robot-preview-image",
	OrderButton:   "#order",
	Receipt:       "#receipt",
	OrderAnother:  "#order-another",
}

// Driver fills and submits the order form.
type Driver struct {
	page      Page
	catalog   *orders.Catalog
	selectors Selectors
	timeout   time.Duration
	logger    *logging.Logger
	state     State
}

// Option configures a Driver.
type Option func(*Driver)

// WithCatalog replaces the part catalog.
func WithCatalog(catalog *orders.Catalog) Option {
	return func(d *Driver) {
		d.catalog = catalog
	}
}

// WithSelectors replaces the page selectors.
func WithSelectors(selectors Selectors) Option {
	return func(d *Driver) {
		d.selectors = selectors
	}
}

// WithTimeout sets the bound of every wait.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver creates a driver for page, starting in StateIdle.
func NewDriver(page Page, opts ...Option) *Driver {
	d := &Driver{
		page:      page,
		catalog:   orders.DefaultCatalog,
		selectors: DefaultSelectors,
		timeout:   DefaultTimeout,
		logger:    logging.Discard(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current workflow state.
func (d *Driver) State() State {
	return d.state
}

// Begin returns the driver to StateIdle so an order can start from scratch.
func (d *Driver) Begin() {
	d.state = StateIdle
}

func (d *Driver) advance(step string, to State) error {
	if !CanTransition(d.state, to) {
		return &TransitionError{Step: step, From: d.state, To: to}
	}
	return nil
}

// DismissModal confirms the start-up modal if it is showing and waits for it to go away.
// It never fails the caller; problems are reported through ModalDismissFailed.
func (d *Driver) DismissModal(ctx context.Context) ModalResult {
	if err := d.advance(StepDismissModal, StateModalChecked); err != nil {
		return ModalResult{Outcome: ModalDismissFailed, Err: err}
	}
	result := d.dismissModal(ctx)
	d.state = StateModalChecked

	switch result.Outcome {
	case ModalAbsent:
		d.logger.Debugf("Modal not found")
	case ModalDismissed:
		d.logger.Debugf("Modal closed")
	case ModalDismissFailed:
		d.logger.Warnf("Error closing modal: %v", result.Err)
	}
	return result
}

func (d *Driver) dismissModal(ctx context.Context) ModalResult {
	if err := ctx.Err(); err != nil {
		return ModalResult{Outcome: ModalDismissFailed, Err: err}
	}

	visible, err := d.page.IsVisible(d.selectors.ModalConfirm)
	if err != nil {
		return ModalResult{Outcome: ModalDismissFailed, Err: err}
	}
	if !visible {
		return ModalResult{Outcome: ModalAbsent}
	}

	if err := d.page.Click(d.selectors.ModalConfirm, d.timeout); err != nil {
		return ModalResult{Outcome: ModalDismissFailed, Err: err}
	}
	if err := d.page.WaitFor(d.selectors.ModalConfirm, browser.StateHidden, d.timeout); err != nil {
		return ModalResult{Outcome: ModalDismissFailed, Err: err}
	}
	return ModalResult{Outcome: ModalDismissed}
}

// Fill populates the form from row. Part codes are resolved before the page is
// touched, so an unmapped code leaves the form as it was.
func (d *Driver) Fill(ctx context.Context, row orders.Row) error {
	if err := d.advance(StepFill, StateFormFilled); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StepError{Step: StepFill, Err: err}
	}

	head, err := d.catalog.HeadPart(row.Head())
	if err != nil {
		return &StepError{Step: StepFill, Err: err}
	}
	body, err := d.catalog.BodyPart(row.Body())
	if err != nil {
		return &StepError{Step: StepFill, Err: err}
	}

	if err := d.page.SelectByLabel(d.selectors.HeadSelect, head, d.timeout); err != nil {
		return &StepError{Step: StepFill, Err: err}
	}
	if err := d.page.Click(fmt.Sprintf(d.selectors.BodyRadio, body), d.timeout); err != nil {
		return &StepError{Step: StepFill, Err: err}
	}
	if err := d.page.Fill(d.selectors.LegsInput, row.Legs(), d.timeout); err != nil {
		return &StepError{Step: StepFill, Err: err}
	}
	if err := d.page.Fill(d.selectors.AddressInput, row.Address(), d.timeout); err != nil {
		return &StepError{Step: StepFill, Err: err}
	}

	d.state = StateFormFilled
	d.logger.Debugf("Form filled for order %s: %s, %s", row.OrderNumber(), head, body)
	return nil
}

// Preview renders the robot preview and waits for its image.
func (d *Driver) Preview(ctx context.Context) error {
	if err := d.advance(StepPreview, StatePreviewed); err != nil {
		return err
	}
	if err := d.clickAndWait(ctx, StepPreview, d.selectors.PreviewButton, d.selectors.PreviewImage); err != nil {
		return err
	}

	d.state = StatePreviewed
	return nil
}

// Submit places the order and waits for the receipt. The site rejects some orders
// at random; that shows up as a timeout on the receipt.
func (d *Driver) Submit(ctx context.Context) error {
	if err := d.advance(StepSubmit, StateSubmitted); err != nil {
		return err
	}
	if err := d.clickAndWait(ctx, StepSubmit, d.selectors.OrderButton, d.selectors.Receipt); err != nil {
		return err
	}

	d.state = StateSubmitted
	return nil
}

// OrderAnother resets the page for the next order.
func (d *Driver) OrderAnother(ctx context.Context) error {
	if err := d.advance(StepOrderAnother, StateReset); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StepError{Step: StepOrderAnother, Err: err}
	}
	if err := d.page.Click(d.selectors.OrderAnother, d.timeout); err != nil {
		return &StepError{Step: StepOrderAnother, Err: err}
	}

	d.state = StateReset
	return nil
}

func (d *Driver) clickAndWait(ctx context.Context, step, button, target string) error {
	if err := ctx.Err(); err != nil {
		return &StepError{Step: step, Err: err}
	}
	if err := d.page.Click(button, d.timeout); err != nil {
		return &StepError{Step: step, Err: err}
	}
	if err := d.page.WaitFor(target, browser.StateVisible, d.timeout); err != nil {
		return &StepError{Step: step, Err: err}
	}
	return nil
}
