package business

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

type fakeProducts struct {
	mu       sync.Mutex
	products map[int64]*model.Product
	updates  int
}

func newFakeProducts(products ...model.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[int64]*model.Product)}
	for i := range products {
		p := products[i]
		f.products[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, model.ErrProductNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ListProducts(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *fakeProducts) UpdateMeasures(_ context.Context, id int64, measures map[model.Attribute]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	for attr, raw := range measures {
		switch attr {
		case model.AttrWeight:
			p.Weight = raw
		case model.AttrWidth:
			p.Width = raw
		case model.AttrHeight:
			p.Height = raw
		case model.AttrLength:
			p.Length = raw
		}
	}
	f.updates++
	return nil
}

type fakeStatuses struct {
	mu       sync.Mutex
	statuses map[int64]model.ProductStatus
	saves    int
}

func newFakeStatuses(statuses ...model.ProductStatus) *fakeStatuses {
	f := &fakeStatuses{statuses: make(map[int64]model.ProductStatus)}
	for _, s := range statuses {
		f.statuses[s.ProductID] = s
	}
	return f
}

func (f *fakeStatuses) Get(_ context.Context, productID int64) (*model.ProductStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.statuses[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStatuses) List(context.Context) ([]model.ProductStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]model.ProductStatus, 0, len(f.statuses))
	for _, s := range f.statuses {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (f *fakeStatuses) Save(_ context.Context, status *model.ProductStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if status.IsClean() {
		delete(f.statuses, status.ProductID)
		return nil
	}
	f.statuses[status.ProductID] = *status
	return nil
}

func (f *fakeStatuses) ClearGroup(_ context.Context, productIDs []int64, group model.Group) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range productIDs {
		s, ok := f.statuses[id]
		if !ok {
			continue
		}
		s.SetFlags(group, model.GroupFlags{})
		n++
		if s.IsClean() {
			delete(f.statuses, id)
			continue
		}
		f.statuses[id] = s
	}
	return n, nil
}

func (f *fakeStatuses) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.statuses))
	f.statuses = make(map[int64]model.ProductStatus)
	return n, nil
}

type fakeOptions struct {
	mu      sync.Mutex
	options map[string]string
	err     error
}

func newFakeOptions(options map[string]string) *fakeOptions {
	if options == nil {
		options = make(map[string]string)
	}
	return &fakeOptions{options: options}
}

func (f *fakeOptions) GetOptions(_ context.Context, names []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, name := range names {
		if v, ok := f.options[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

func (f *fakeOptions) SetOptions(_ context.Context, options map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for k, v := range options {
		f.options[k] = v
	}
	return nil
}

func (f *fakeOptions) DeleteOptions(_ context.Context, prefixes []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for name := range f.options {
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				delete(f.options, name)
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []model.AlertEvent
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, events []model.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return f.err
}

func (f *fakeNotifier) published() []model.AlertEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AlertEvent(nil), f.events...)
}

type fakeCache struct {
	mu            sync.Mutex
	report        *model.Report
	ttl           time.Duration
	sets          int
	invalidations int
	err           error
}

func (f *fakeCache) Get(context.Context) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeCache) Set(_ context.Context, report *model.Report, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.ttl = ttl
	if f.err != nil {
		return f.err
	}
	f.report = report
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	f.report = nil
	return f.err
}

type fakeMailer struct {
	mu    sync.Mutex
	mails []*Mail
	err   error
}

func (f *fakeMailer) Send(_ context.Context, mail *Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mails = append(f.mails, mail)
	return nil
}

func (f *fakeMailer) sent() []*Mail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Mail(nil), f.mails...)
}

var errStore = errors.New("store unavailable")

// fixture 组装全部服务，共享同一组内存存储
type fixture struct {
	products *fakeProducts
	statuses *fakeStatuses
	options  *fakeOptions
	notifier *fakeNotifier
	cache    *fakeCache
	mailer   *fakeMailer

	settings   *SettingsService
	reports    *ReportService
	exporter   *CSVExporter
	checker    *ProductChecker
	reanalysis *ReanalysisService
	bulk       *BulkService
	digest     *DigestService
	alertMail  *AlertMailService
	purge      *PurgeService
}

func newFixture(products ...model.Product) *fixture {
	f := &fixture{
		products: newFakeProducts(products...),
		statuses: newFakeStatuses(),
		options:  newFakeOptions(nil),
		notifier: &fakeNotifier{},
		cache:    &fakeCache{},
		mailer:   &fakeMailer{},
	}
	log := logger.NewNop()
	clock := func() time.Time { return t0 }

	f.settings = NewSettingsService(f.options, f.cache, log)
	f.reports = NewReportService(f.products, f.settings, f.cache, time.Hour, log)
	f.reports.clock = clock
	f.exporter = NewCSVExporter(f.reports, "https://shop.example.com/")
	f.checker = NewProductChecker(f.products, f.statuses, f.settings, f.notifier, f.cache, log).WithClock(clock)
	f.reanalysis = NewReanalysisService(f.products, f.statuses, f.settings, f.notifier, f.cache, log).WithClock(clock)
	f.bulk = NewBulkService(f.products, f.statuses, f.settings, f.checker, f.notifier, f.cache, log).WithClock(clock)
	f.digest = NewDigestService(f.settings, f.reports, f.exporter, f.mailer, "Loja", log)
	f.alertMail = NewAlertMailService(f.settings, f.exporter, f.mailer, log)
	f.purge = NewPurgeService(f.statuses, f.options, f.cache, log)
	return f
}

// withRecipients 写入收件人配置
func (f *fixture) withRecipients(recipients string) *fixture {
	f.options.options[OptRecipients] = recipients
	return f
}

// okProduct 重量与尺寸都在默认区间内的商品
func okProduct(id int64, title string) model.Product {
	return model.Product{ID: id, Title: title, Status: model.PostStatusPublish, Weight: "1", Width: "10", Height: "10", Length: "10"}
}
