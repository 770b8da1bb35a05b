package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
	"conversion-tracking-service/internal/payment/core/domain"
	"conversion-tracking-service/internal/payment/core/ports"

	"go.uber.org/zap"
)

const VerifyScript = "verifyPayment.php"

var (
	ErrInvalidTransaction = errors.New("transaction id is required")
	ErrInvalidPage        = errors.New("page location is required")
	ErrNoBackendBase      = errors.New("relative page url and no backend base url configured")
)

type CheckPaymentStatusInput struct {
	TransactionID string
	PaymentID     string
	Page          attrPorts.Page
}

type CheckPaymentStatusConfig struct {
	// BackendBaseURL resolves relative page URLs.
	BackendBaseURL string
	// DeploymentRoot is the path the endpoint depth is counted from.
	DeploymentRoot string
}

type CheckPaymentStatusUseCase struct {
	backend ports.PaymentBackendPort
	utm     ports.UTMSourcePort
	base    *url.URL
	root    string
	logger  *zap.Logger
}

func NewCheckPaymentStatusUseCase(
	backend ports.PaymentBackendPort,
	utm ports.UTMSourcePort,
	cfg CheckPaymentStatusConfig,
	logger *zap.Logger,
) (*CheckPaymentStatusUseCase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base *url.URL
	if cfg.BackendBaseURL != "" {
		u, err := url.Parse(cfg.BackendBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse backend base url: %w", err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("backend base url must be absolute: %q", cfg.BackendBaseURL)
		}
		base = u
	}

	return &CheckPaymentStatusUseCase{
		backend: backend,
		utm:     utm,
		base:    base,
		root:    cfg.DeploymentRoot,
		logger:  logger.Named("payment"),
	}, nil
}

// Execute posts one status check and classifies the answer. There is no
// retry; backend failures are returned to the caller unchanged.
func (uc *CheckPaymentStatusUseCase) Execute(ctx context.Context, in CheckPaymentStatusInput) (*domain.PaymentStatus, error) {
	id := strings.TrimSpace(in.TransactionID)
	if id == "" {
		return nil, ErrInvalidTransaction
	}
	if in.Page.Location == nil || in.Page.Location.URL() == nil {
		return nil, ErrInvalidPage
	}

	endpoint, err := uc.endpoint(in.Page.Location.URL())
	if err != nil {
		return nil, err
	}

	req := ports.VerifyRequest{
		ID:        id,
		PaymentID: strings.TrimSpace(in.PaymentID),
	}
	if uc.utm != nil {
		req.UTMQuery = uc.utm.UTMQuery(ctx, in.Page)
	}

	body, err := uc.backend.Verify(ctx, endpoint, req)
	if err != nil {
		uc.logger.Warn("payment status check failed",
			zap.String("transaction_id", id),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, err
	}

	return &domain.PaymentStatus{
		TransactionID: id,
		Paid:          domain.IsPaid(body),
		Status:        domain.StatusOf(body),
		Response:      body,
	}, nil
}

func (uc *CheckPaymentStatusUseCase) endpoint(page *url.URL) (string, error) {
	if !page.IsAbs() {
		if uc.base == nil {
			return "", ErrNoBackendBase
		}
		page = uc.base.ResolveReference(page)
	}

	ref, err := url.Parse(EndpointPath(page.Path, uc.root))
	if err != nil {
		return "", err
	}
	return page.ResolveReference(ref).String(), nil
}

// EndpointPath climbs from the page's directory back to the deployment root:
// one "../" per directory level below root, then the verify script.
func EndpointPath(pagePath, root string) string {
	dir := path.Dir("/" + strings.TrimPrefix(pagePath, "/"))
	if strings.HasSuffix(pagePath, "/") {
		dir = path.Clean("/" + strings.TrimPrefix(pagePath, "/"))
	}

	root = path.Clean("/" + strings.Trim(root, "/"))
	if root != "/" {
		if dir == root {
			dir = "/"
		} else if strings.HasPrefix(dir, root+"/") {
			dir = strings.TrimPrefix(dir, root)
		}
	}

	depth := 0
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg != "" {
			depth++
		}
	}
	return strings.Repeat("../", depth) + VerifyScript
}
