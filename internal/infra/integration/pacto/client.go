package pacto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

const (
	StudentsPath    = "/psec/alunos/v2"
	BookingsPath    = "/psec/treino-bi/agendamento-executaram"
	EnrollmentsPath = "/psec/alunos/lista/matriculas"

	studentsPageSize = 100
	bulkPageSize     = 500
	professorID      = 1

	maxBackoff = time.Minute
)

var (
	ErrRetriesExhausted = errors.New("pacto: tentativas esgotadas")
	ErrUnexpectedStatus = errors.New("pacto: status inesperado")
)

type Client struct {
	baseURL     string
	token       string
	companyID   string
	http        *http.Client
	limiter     *rate.Limiter
	backoff     time.Duration
	maxAttempts int
	maxPages    int
}

type Option func(*Client)

// WithMaxPages limita a paginação (amostras rápidas). 0 = sem limite.
func WithMaxPages(n int) Option {
	return func(c *Client) { c.maxPages = n }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient: wait é a pausa entre requisições (~1.3s para ficar abaixo de 50 req/min)
// e também a base do backoff quando a API devolve 429/5xx.
func NewClient(baseURL, token, companyID string, wait time.Duration, maxAttempts int, opts ...Option) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		companyID:   companyID,
		http:        &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(wait), 1),
		backoff:     wait,
		maxAttempts: maxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Students busca a base de alunos, mais recentes primeiro.
func (c *Client) Students(ctx context.Context) (*entity.Dataset, error) {
	params := url.Values{}
	params.Set("sort", "dataMatriculaZW,desc")

	records, err := c.FetchAll(ctx, StudentsPath, params, studentsPageSize)
	if err != nil {
		return nil, err
	}
	return entity.NewDataset(records), nil
}

// Bookings busca os agendamentos executados (sem filtro de evento, isso é do núcleo).
func (c *Client) Bookings(ctx context.Context) (*entity.Dataset, error) {
	filters, _ := json.Marshal(bookingFilters{ProfessorID: professorID})

	params := url.Values{}
	params.Set("professorId", strconv.Itoa(professorID))
	params.Set("sort", "nome,asc")
	params.Set("filters", string(filters))

	records, err := c.FetchAll(ctx, BookingsPath, params, bulkPageSize)
	if err != nil {
		return nil, err
	}
	return entity.NewDataset(records), nil
}

// Enrollments busca matrículas no intervalo. A API costuma ignorar o filtro,
// então o recorte final é feito em reconcile.CleanEnrollments.
func (c *Client) Enrollments(ctx context.Context, from, to time.Time) (*entity.Dataset, error) {
	params := url.Values{}
	params.Set("dataInicio", from.Format("2006-01-02"))
	params.Set("dataFim", to.Format("2006-01-02"))
	params.Set("professorId", strconv.Itoa(professorID))

	records, err := c.FetchAll(ctx, EnrollmentsPath, params, bulkPageSize)
	if err != nil {
		return nil, err
	}
	return entity.NewDataset(records), nil
}

// FetchAll percorre as páginas até vir uma vazia ou menor que pageSize.
// Qualquer falha de página aborta: snapshot parcial não é devolvido.
func (c *Client) FetchAll(ctx context.Context, path string, params url.Values, pageSize int) ([]entity.Record, error) {
	var all []entity.Record

	for page := 0; c.maxPages == 0 || page < c.maxPages; page++ {
		q := url.Values{}
		for k, v := range params {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(pageSize))

		content, err := c.getPage(ctx, path, q)
		if err != nil {
			return nil, fmt.Errorf("página %d de %s: %w", page, path, err)
		}

		all = append(all, content...)
		log.Printf("📥 [PACTO] %s página %d (%d registros)", path, page, len(all))

		if len(content) == 0 || len(content) < pageSize {
			break
		}
	}

	return all, nil
}

func (c *Client) getPage(ctx context.Context, path string, q url.Values) ([]entity.Record, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoffFor(attempt)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		content, retry, err := c.do(ctx, path, q)
		if err == nil {
			return content, nil
		}
		if !retry {
			return nil, err
		}

		lastErr = err
		log.Printf("⚠️ [PACTO] %s tentativa %d/%d falhou: %v", path, attempt+1, c.maxAttempts, err)
	}

	return nil, fmt.Errorf("%w após %d tentativas: %v", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// do faz uma requisição. retry=true para 429, 5xx e erro de rede.
func (c *Client) do(ctx context.Context, path string, q url.Values) ([]entity.Record, bool, error) {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("erro de comunicação com a pacto: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var page pageResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return nil, false, fmt.Errorf("erro decode pacto: %w", err)
		}
		return page.Content, false, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("empresaId", c.companyID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) backoffFor(attempt int) time.Duration {
	if c.backoff <= 0 {
		return 0
	}
	d := c.backoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
