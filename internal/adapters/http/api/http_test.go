package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	service "github.com/okian/quantumcrowd/internal/app"
	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps is a table-driven stand-in for the service.
type fakeDeps struct {
	startups  map[int]model.Startup
	records   map[int]model.PredictionRecord
	jobs      map[string]model.JobStatus
	submitErr error
	attachErr error

	submitted []model.FeatureSet
	attached  []string
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		startups: map[int]model.Startup{
			1: {ID: 1, Owner: "0x1", Title: "EcoTech Solutions", Sector: "CleanTech", Goal: 100, Raised: 45},
			2: {ID: 2, Owner: "0x2", Title: "MediChain", Sector: "HealthTech", Goal: 200, Raised: 120},
		},
		records: map[int]model.PredictionRecord{},
		jobs:    map[string]model.JobStatus{},
	}
}

func (f *fakeDeps) Submit(_ context.Context, id int, features model.FeatureSet) (service.Submission, error) {
	if f.submitErr != nil {
		return service.Submission{}, f.submitErr
	}
	if _, ok := f.startups[id]; !ok {
		return service.Submission{}, fmt.Errorf("%w: startup %d", model.ErrNotFound, id)
	}
	f.submitted = append(f.submitted, features)
	return service.Submission{JobID: "job-1", Placeholder: model.Placeholder(id, "QML-v2.0", 1700000000)}, nil
}

func (f *fakeDeps) Startups(context.Context) ([]model.Startup, error) {
	return []model.Startup{f.startups[1], f.startups[2]}, nil
}

func (f *fakeDeps) Startup(_ context.Context, id int) (service.StartupDetail, error) {
	st, ok := f.startups[id]
	if !ok {
		return service.StartupDetail{}, fmt.Errorf("%w: startup %d", model.ErrNotFound, id)
	}
	detail := service.StartupDetail{Startup: st}
	if rec, ok := f.records[id]; ok {
		detail.Prediction = &rec
	}
	return detail, nil
}

func (f *fakeDeps) Job(_ context.Context, id string) (model.JobStatus, error) {
	st, ok := f.jobs[id]
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: job %s", model.ErrNotFound, id)
	}
	return st, nil
}

func (f *fakeDeps) ModelInfo() (service.ModelInfo, error) {
	return service.ModelInfo{Name: "Quantum Startup Success Predictor", Version: "QML-v2.0"}, nil
}

func (f *fakeDeps) InvestIntent(_ context.Context, id int, investor string, amount float64) (model.InvestIntent, error) {
	if _, ok := f.startups[id]; !ok {
		return model.InvestIntent{}, fmt.Errorf("%w: startup %d", model.ErrNotFound, id)
	}
	return model.InvestIntent{IntentID: "intent-1", StartupID: id, Investor: investor, Amount: amount, Signature: "0xabc"}, nil
}

func (f *fakeDeps) AttachPublication(_ context.Context, id int, tx string) (bool, error) {
	if f.attachErr != nil {
		return false, f.attachErr
	}
	f.attached = append(f.attached, fmt.Sprintf("%d:%s", id, tx))
	_, ok := f.records[id]
	return ok, nil
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "queueLength": 0}
}

func newTestMux(deps Dependencies, opts ...Option) *http.ServeMux {
	So(logger.Init(), ShouldBeNil)
	mux := http.NewServeMux()
	NewServer(deps, fakeStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

const samplePredict = `{"startupId":1,"features":{"team":0.8,"traction":0.7,"market":0.6,"innovation":0.9,"financials":0.7}}`

func TestRootAndOperationalRoutes(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newTestMux(newFakeDeps())

		Convey("GET / returns the welcome message", func() {
			w := do(mux, http.MethodGet, "/", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]string
			decodeBody(w, &body)
			So(body["message"], ShouldEqual, "Welcome to QuantumCrowd API")
		})

		Convey("Unknown paths are 404", func() {
			So(do(mux, http.MethodGet, "/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("GET /healthz exposes metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "qcrowd_")
		})

		Convey("GET /stats returns provider stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			decodeBody(w, &body)
			So(body["started"], ShouldEqual, true)
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
		})

		Convey("GET /api/model returns model info", func() {
			w := do(mux, http.MethodGet, "/api/model", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			decodeBody(w, &body)
			So(body["model_version"], ShouldEqual, "QML-v2.0")
		})
	})
}

func TestStartupRoutes(t *testing.T) {
	Convey("Given an API over two startups", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		Convey("GET /api/startups lists them", func() {
			w := do(mux, http.MethodGet, "/api/startups", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body []model.Startup
			decodeBody(w, &body)
			So(len(body), ShouldEqual, 2)
			So(body[1].Title, ShouldEqual, "MediChain")
		})

		Convey("GET /api/startups/{id} without a prediction has a null prediction", func() {
			w := do(mux, http.MethodGet, "/api/startups/1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]json.RawMessage
			decodeBody(w, &body)
			So(string(body["prediction"]), ShouldEqual, "null")
			So(string(body["startup"]), ShouldContainSubstring, `"title":"EcoTech Solutions"`)
		})

		Convey("GET /api/startups/{id} includes a stored prediction", func() {
			deps.records[2] = model.PredictionRecord{StartupID: 2, Prediction: 61.5, Signature: "0xabc"}
			w := do(mux, http.MethodGet, "/api/startups/2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Prediction *model.PredictionRecord `json:"prediction"`
			}
			decodeBody(w, &body)
			So(body.Prediction, ShouldNotBeNil)
			So(body.Prediction.Prediction, ShouldEqual, 61.5)
		})

		Convey("An unknown id is 404", func() {
			w := do(mux, http.MethodGet, "/api/startups/99", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			var body errorResponse
			decodeBody(w, &body)
			So(body.Code, ShouldEqual, "not_found")
		})

		Convey("A non-integer id is 400", func() {
			So(do(mux, http.MethodGet, "/api/startups/abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Other methods are 404", func() {
			So(do(mux, http.MethodPost, "/api/startups", "{}").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredictRoute(t *testing.T) {
	Convey("Given an API", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		Convey("A valid request returns the placeholder and job id", func() {
			w := do(mux, http.MethodPost, "/api/predict", samplePredict)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			decodeBody(w, &body)
			So(body["jobId"], ShouldEqual, "job-1")
			So(body["startupId"], ShouldEqual, 1.0)
			So(body["prediction"], ShouldEqual, 0.0)
			So(body["signature"], ShouldEqual, model.Pending)
			So(body["ipfsHash"], ShouldEqual, model.Pending)
			So(body["txHash"], ShouldBeNil)
			So(deps.submitted, ShouldResemble, []model.FeatureSet{{Team: 0.8, Traction: 0.7, Market: 0.6, Innovation: 0.9, Financials: 0.7}})
		})

		Convey("Malformed JSON is 400", func() {
			w := do(mux, http.MethodPost, "/api/predict", "{")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorResponse
			decodeBody(w, &body)
			So(body.Code, ShouldEqual, "invalid_json")
		})

		Convey("Missing fields are 400", func() {
			So(do(mux, http.MethodPost, "/api/predict", `{"startupId":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/api/predict", `{"features":{}}`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.submitted, ShouldBeEmpty)
		})

		Convey("An unknown startup is 404", func() {
			w := do(mux, http.MethodPost, "/api/predict", `{"startupId":42,"features":{"team":1}}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A full queue is 429", func() {
			deps.submitErr = fmt.Errorf("%w: queue is full", model.ErrBackpressure)
			w := do(mux, http.MethodPost, "/api/predict", samplePredict)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			var body errorResponse
			decodeBody(w, &body)
			So(body.Code, ShouldEqual, "backpressure")
		})

		Convey("Other failures are 500", func() {
			deps.submitErr = errors.New("boom")
			So(do(mux, http.MethodPost, "/api/predict", samplePredict).Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("GET is 404", func() {
			So(do(mux, http.MethodGet, "/api/predict", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestJobRoute(t *testing.T) {
	Convey("Given an API tracking one job", t, func() {
		deps := newFakeDeps()
		deps.jobs["job-1"] = model.JobStatus{ID: "job-1", StartupID: 1, State: model.JobComputing, AcceptedAt: time.Unix(1700000000, 0).UTC()}
		mux := newTestMux(deps)

		Convey("GET /api/jobs/{id} returns its state", func() {
			w := do(mux, http.MethodGet, "/api/jobs/job-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			decodeBody(w, &body)
			So(body["jobId"], ShouldEqual, "job-1")
			So(body["state"], ShouldEqual, "computing")
			_, finished := body["finishedAt"]
			So(finished, ShouldBeFalse)
		})

		Convey("An unknown job is 404", func() {
			So(do(mux, http.MethodGet, "/api/jobs/job-2", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestInvestIntentRoute(t *testing.T) {
	Convey("Given an API", t, func() {
		mux := newTestMux(newFakeDeps())

		Convey("A valid intent is returned", func() {
			w := do(mux, http.MethodPost, "/api/invest-intent", `{"startupId":2,"investor":"0xinv","amount":1.5}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var body model.InvestIntent
			decodeBody(w, &body)
			So(body.StartupID, ShouldEqual, 2)
			So(body.Investor, ShouldEqual, "0xinv")
			So(body.Amount, ShouldEqual, 1.5)
			So(body.IntentID, ShouldNotBeEmpty)
		})

		Convey("An unknown startup is 404", func() {
			w := do(mux, http.MethodPost, "/api/invest-intent", `{"startupId":9,"investor":"0xinv","amount":1}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A missing investor is 400", func() {
			w := do(mux, http.MethodPost, "/api/invest-intent", `{"startupId":1,"amount":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestWebhookRoute(t *testing.T) {
	Convey("Given an API", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		Convey("A notification for a startup without a record still succeeds", func() {
			w := do(mux, http.MethodPost, "/api/webhook/prediction-published", `{"startupId":1,"prediction":61.5,"txHash":"0xtx"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]string
			decodeBody(w, &body)
			So(body["status"], ShouldEqual, "success")
			So(deps.attached, ShouldResemble, []string{"1:0xtx"})
		})

		Convey("An attach failure is still acknowledged", func() {
			deps.attachErr = errors.New("store unavailable")
			w := do(mux, http.MethodPost, "/api/webhook/prediction-published", `{"startupId":1,"txHash":"0xtx"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Malformed JSON is 400", func() {
			So(do(mux, http.MethodPost, "/api/webhook/prediction-published", "nope").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/api/webhook/prediction-published", `{"startupId":1`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.attached, ShouldBeEmpty)
		})

		Convey("Well-formed JSON with unusable fields is acknowledged and ignored", func() {
			for _, body := range []string{
				`{"startupId":"1","prediction":50,"txHash":"0xa"}`,
				`{"startupId":1.5,"prediction":50,"txHash":"0xa"}`,
				`{"startupId":1,"prediction":50,"txHash":""}`,
				`{"startupId":1,"prediction":50,"txHash":42}`,
				`{"startupId":null,"txHash":"0xa"}`,
				`{}`,
				`[1,2,3]`,
				`"hello"`,
				`null`,
			} {
				w := do(mux, http.MethodPost, "/api/webhook/prediction-published", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]string
				decodeBody(w, &resp)
				So(resp["status"], ShouldEqual, "success")
			}
			So(deps.attached, ShouldBeEmpty)
		})

		Convey("A prediction of an unexpected type does not block the attach", func() {
			w := do(mux, http.MethodPost, "/api/webhook/prediction-published", `{"startupId":1,"prediction":"61.5","txHash":"0xb"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.attached, ShouldResemble, []string{"1:0xb"})
		})
	})
}

func TestPredictRateLimit(t *testing.T) {
	Convey("Given an API limited to one predict request per client", t, func() {
		mux := newTestMux(newFakeDeps(), WithPredictRateLimit(0.5, 1))

		first := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(samplePredict))
		first.RemoteAddr = "10.0.0.1:1234"
		w1 := httptest.NewRecorder()
		mux.ServeHTTP(w1, first)
		So(w1.Code, ShouldEqual, http.StatusOK)

		Convey("A second request from the same client is rejected", func() {
			second := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(samplePredict))
			second.RemoteAddr = "10.0.0.1:5678"
			w2 := httptest.NewRecorder()
			mux.ServeHTTP(w2, second)
			So(w2.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w2.Header().Get("Retry-After"), ShouldEqual, "2")
			var body errorResponse
			decodeBody(w2, &body)
			So(body.Code, ShouldEqual, "rate_limited")
		})

		Convey("Another client is unaffected", func() {
			other := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(samplePredict))
			other.RemoteAddr = "10.0.0.2:1234"
			w2 := httptest.NewRecorder()
			mux.ServeHTTP(w2, other)
			So(w2.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Read routes are not limited", func() {
			for i := 0; i < 5; i++ {
				So(do(mux, http.MethodGet, "/api/startups", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestClientIP(t *testing.T) {
	Convey("Given a request behind forwarding headers", t, func() {
		r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		r.RemoteAddr = "192.0.2.1:4000"
		r.Header.Set("X-Real-IP", "198.51.100.7")
		r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

		Convey("The peer address is used unless proxies are trusted", func() {
			So(clientIP(r, false), ShouldEqual, "192.0.2.1")
		})

		Convey("Trusted proxies yield the first forwarded hop", func() {
			So(clientIP(r, true), ShouldEqual, "203.0.113.5")
			r.Header.Del("X-Forwarded-For")
			So(clientIP(r, true), ShouldEqual, "198.51.100.7")
			r.Header.Del("X-Real-IP")
			So(clientIP(r, true), ShouldEqual, "192.0.2.1")
		})
	})
}

func TestPredictRateLimitForwardedFor(t *testing.T) {
	Convey("Given a predict limit of one request per client", t, func() {
		send := func(mux http.Handler, fwd string) int {
			r := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(samplePredict))
			r.RemoteAddr = "10.0.0.9:1234"
			r.Header.Set("X-Forwarded-For", fwd)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)
			return w.Code
		}

		Convey("Rotating X-Forwarded-For does not bypass the limit by default", func() {
			mux := newTestMux(newFakeDeps(), WithPredictRateLimit(0.5, 1))
			So(send(mux, "203.0.113.1"), ShouldEqual, http.StatusOK)
			So(send(mux, "203.0.113.2"), ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("Forwarded clients are limited separately behind a trusted proxy", func() {
			mux := newTestMux(newFakeDeps(), WithPredictRateLimit(0.5, 1), WithTrustedProxyHeaders(true))
			So(send(mux, "203.0.113.1"), ShouldEqual, http.StatusOK)
			So(send(mux, "203.0.113.2"), ShouldEqual, http.StatusOK)
			So(send(mux, "203.0.113.1"), ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a CORS-wrapped API", t, func() {
		mux := newTestMux(newFakeDeps())

		Convey("With a restricted origin list", func() {
			h := CORS(mux, []string{"https://app.example"})

			Convey("A preflight from an allowed origin is 204", func() {
				r := httptest.NewRequest(http.MethodOptions, "/api/predict", http.NoBody)
				r.Header.Set("Origin", "https://app.example")
				r.Header.Set("Access-Control-Request-Method", http.MethodPost)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, r)
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example")
			})

			Convey("Other origins get no allow header", func() {
				r := httptest.NewRequest(http.MethodGet, "/api/startups", http.NoBody)
				r.Header.Set("Origin", "https://evil.example")
				w := httptest.NewRecorder()
				h.ServeHTTP(w, r)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})

		Convey("With a wildcard any origin is allowed", func() {
			h := CORS(mux, []string{"*"})
			r := httptest.NewRequest(http.MethodGet, "/api/startups", http.NoBody)
			r.Header.Set("Origin", "https://anywhere.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Kind errors keep both the kind and the cause", t, func() {
		cause := errors.New("unexpected EOF")
		err := WrapKind("decode", ErrBadRequest, cause)
		So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "decode: bad request: unexpected EOF")

		So(WrapKind("decode", ErrBadRequest, nil), ShouldBeNil)

		k := NewKind("predict", ErrRateLimited)
		So(errors.Is(k, ErrRateLimited), ShouldBeTrue)
		So(k.Error(), ShouldEqual, "predict: rate limit exceeded")
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("HTTP status codes map to error types and severities", t, func() {
		So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
		So(getErrorType(http.StatusTooManyRequests), ShouldEqual, "rate_limit")
		So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
		So(getErrorSeverity(http.StatusBadGateway), ShouldEqual, "high")
		So(getErrorSeverity(http.StatusNotFound), ShouldEqual, "medium")
		So(getErrorSeverity(http.StatusOK), ShouldEqual, "low")
	})
}

func TestEndToEnd(t *testing.T) {
	Convey("Given the API over a running service", t, func() {
		So(logger.Init(), ShouldBeNil)
		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = svc.Stop(ctx)
		}()

		mux := http.NewServeMux()
		NewServer(svc, svc).Register(context.Background(), mux)

		Convey("A prediction is a placeholder first and a signed record later", func() {
			w := do(mux, http.MethodPost, "/api/predict", samplePredict)
			So(w.Code, ShouldEqual, http.StatusOK)
			var placeholder predictResponse
			decodeBody(w, &placeholder)
			So(placeholder.Prediction, ShouldEqual, 0.0)
			So(placeholder.Signature, ShouldEqual, model.Pending)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			st, err := svc.Wait(ctx, placeholder.JobID)
			So(err, ShouldBeNil)
			So(st.State, ShouldEqual, model.JobCompleted)

			w = do(mux, http.MethodGet, "/api/startups/1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var detail service.StartupDetail
			decodeBody(w, &detail)
			So(detail.Prediction, ShouldNotBeNil)
			So(detail.Prediction.Prediction, ShouldBeBetweenOrEqual, 0.0, 100.0)
			So(detail.Prediction.Confidence, ShouldBeBetweenOrEqual, 0.0, 100.0)
			So(detail.Prediction.Signature, ShouldNotEqual, model.Pending)

			w = do(mux, http.MethodGet, "/api/jobs/"+placeholder.JobID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("A webhook for a startup without a record creates nothing", func() {
			w := do(mux, http.MethodPost, "/api/webhook/prediction-published", `{"startupId":2,"prediction":50,"txHash":"0xdead"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(mux, http.MethodGet, "/api/startups/2", "")
			var body map[string]json.RawMessage
			decodeBody(w, &body)
			So(string(body["prediction"]), ShouldEqual, "null")
		})

		Convey("Unknown startups are 404 on every route", func() {
			So(do(mux, http.MethodGet, "/api/startups/999", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/api/predict", `{"startupId":999,"features":{}}`).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/api/invest-intent", `{"startupId":999,"investor":"0x1","amount":1}`).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
