package yahoo_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/provider/yahoo"
)

func TestProvider_Fetch_DerivesWindowBands(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v8/finance/chart/RELIANCE.NS", req.URL.Path)
			return respond(http.StatusOK, relianceChart), nil
		}).
		Times(1)

	p := yahoo.New(yahoo.Config{}, yahoo.NewClient(yahoo.WithHTTPClient(httpClient)))
	require.Equal(t, "Yahoo Finance", p.Name())

	q, err := p.Fetch(t.Context(), "RELIANCE")
	require.NoError(t, err)
	require.True(t, q.Usable())
	require.True(t, q.HasRanges())
	require.Equal(t, "RELIANCE", q.Symbol)
	require.Equal(t, "Yahoo Finance", q.Source)
	require.InDelta(t, 2500.0, *q.Price, 1e-9)
	require.InDelta(t, 2800.0, *q.High52W, 1e-9)
	require.InDelta(t, 2100.0, *q.Low52W, 1e-9)
	require.InDelta(t, 2650.0, *q.High3M, 1e-9)
	require.InDelta(t, 2400.0, *q.Low3M, 1e-9)
	require.InDelta(t, 2550.0, *q.High1M, 1e-9)
	require.InDelta(t, 2480.0, *q.Low1M, 1e-9)
}

func TestProvider_Fetch_FallsBackToLastClose(t *testing.T) {
	t.Parallel()

	body := `{"chart":{"result":[{"meta":{"symbol":"IDEA.NS","currency":"INR"},
	  "timestamp":[1759276800,1760054400],
	  "indicators":{"quote":[{"high":[8.1,7.9],"low":[7.2,7.4],"close":[7.5,null]}]}}],"error":null}}`

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(respond(http.StatusOK, body), nil).Times(1)

	p := yahoo.New(yahoo.Config{Name: "Yahoo"}, yahoo.NewClient(yahoo.WithHTTPClient(httpClient)))
	q, err := p.Fetch(t.Context(), "IDEA")
	require.NoError(t, err)
	require.InDelta(t, 7.5, *q.Price, 1e-9)
	require.Equal(t, "Yahoo", q.Source)
}

func TestProvider_Fetch_EmptyHistory(t *testing.T) {
	t.Parallel()

	body := `{"chart":{"result":[{"meta":{"symbol":"XYZ.NS","regularMarketPrice":12.0},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(respond(http.StatusOK, body), nil).Times(1)

	p := yahoo.New(yahoo.Config{}, yahoo.NewClient(yahoo.WithHTTPClient(httpClient)))
	_, err := p.Fetch(t.Context(), "XYZ")
	require.ErrorIs(t, err, provider.ErrNoData)
}
