package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/jounabs52/datesheet/apps/api/echo"
	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
	"github.com/jounabs52/datesheet/core/mark"
	dummydb "github.com/jounabs52/datesheet/storage/database/dummy"
	"github.com/jounabs52/datesheet/testutil"
)

var errStore = errors.New("store unavailable")

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

// failingSlots fails every CreateSlots call after the first `after` ones.
type failingSlots struct {
	exam.SlotRepository
	after int
	calls int
}

func (f *failingSlots) CreateSlots(ctx context.Context, slots []exam.Slot) ([]exam.Slot, error) {
	f.calls++
	if f.calls > f.after {
		return nil, errStore
	}
	return f.SlotRepository.CreateSlots(ctx, slots)
}

type testApp struct {
	server  *echoapi.Server
	examSvc *exam.Service
	markSvc *mark.Service
}

func newTestApp(t *testing.T, conf *core.Config, wrapSlots ...func(exam.SlotRepository) exam.SlotRepository) testApp {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	if conf == nil {
		conf = core.NewTestConfig()
	}
	logger := testutil.NewLogger()

	var slots exam.SlotRepository = dummydb.NewSlotRepository(db)
	for _, wrap := range wrapSlots {
		slots = wrap(slots)
	}
	examSvc := exam.NewService(dummydb.NewExamRepository(db), slots, logger, conf)
	markSvc := mark.NewService(dummydb.NewMarkRepository(db), examSvc, logger)
	validate, translator := testutil.NewValidator()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		ExamSvc:    examSvc,
		MarkSvc:    markSvc,
		Validate:   validate,
		Translator: translator,
	})
	return testApp{server: server, examSvc: examSvc, markSvc: markSvc}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(): %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
