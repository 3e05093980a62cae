package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"brokerage/internal/config"
	"brokerage/pkg/money"
)

// Client 通过 HTTP 查询实时行情
// 接口形如 GET {base_url}/quote/{symbol}?token=xxx
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// quoteResponse 行情接口返回的 JSON
type quoteResponse struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	LatestPrice float64 `json:"latestPrice"`
}

func NewClient(cfg *config.QuoteConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lookup 查询单只股票的实时行情
// 404 视为代码不存在，其余错误（超时、5xx、响应不合法）一律视为行情服务不可用，
// 调用方拿到错误后整个操作中止，不会产生任何账务变更
func (c *Client) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	// 代码转义后再拼路径，带特殊字符的输入不能改写请求路径
	reqURL := fmt.Sprintf("%s/quote/%s?token=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 行情接口返回 %d", ErrUnavailable, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrUnavailable, err)
	}

	price := money.FromFloat(body.LatestPrice)
	if price <= 0 {
		return nil, fmt.Errorf("%w: 行情价格不合法: %f", ErrUnavailable, body.LatestPrice)
	}

	return &Quote{
		Symbol: body.Symbol,
		Name:   body.CompanyName,
		Price:  price,
	}, nil
}
