// Package app собирает клиент целиком: хранилище сессии, API-клиент,
// ворота доступа и контроллеры экранов — и ведёт интерактивный цикл.
//
// Цикл на каждом шаге заново вычисляет доступный экран из текущей
// сессии, поэтому любая её мутация (вход, оплата, настройка, сброс
// токена) меняет маршрут без перезапуска.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/magabrotheeeer/financeflow-client/internal/api"
	"github.com/magabrotheeeer/financeflow-client/internal/callback"
	"github.com/magabrotheeeer/financeflow-client/internal/config"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/auth"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/chat"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/dashboard"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/expenses"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/recommendations"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/setup"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers/subscription"
	"github.com/magabrotheeeer/financeflow-client/internal/gate"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
	"github.com/magabrotheeeer/financeflow-client/internal/session"
)

// App — собранный клиент FinanceFlow.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	sessions *session.Manager
	client   *api.Client

	authCtl *auth.Controller
	setCtl  *setup.Controller
	subCtl  *subscription.Controller
	expCtl  *expenses.Controller
	dashCtl *dashboard.Controller
	chatCtl *chat.Controller
	recCtl  *recommendations.Controller

	in   io.Reader
	out  io.Writer
	path string
	view gate.View
}

// New создаёт приложение и восстанавливает сессию из хранилища.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := session.NewStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store, log)
	client := api.New(cfg.Backend, sessions, log)

	a := &App{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		client:   client,
		authCtl:  auth.New(log, client, sessions),
		setCtl:   setup.New(log, client, sessions),
		subCtl:   subscription.New(log, client, sessions, cfg.Checkout),
		expCtl:   expenses.New(log, client),
		dashCtl:  dashboard.New(log, client),
		chatCtl:  chat.New(log, client),
		recCtl:   recommendations.New(log, client),
		in:       os.Stdin,
		out:      os.Stdout,
		path:     "/",
	}

	// Отклонённый токен — сквозной сигнал: сессия сбрасывается здесь,
	// а не в каждом контроллере; ворота увидят её отсутствие сами.
	client.SetOnUnauthorized(func() {
		log.Warn("session invalidated, returning to auth")
		_ = sessions.Clear()
	})

	sessions.Subscribe(func(sess *models.Session) {
		log.Info("session changed",
			sl.View(string(gate.Resolve(sess, a.path))))
	})

	return a, nil
}

// Run ведёт интерактивный цикл до EOF или отмены контекста.
func (a *App) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(a.in)
	for {
		if ctx.Err() != nil {
			return nil
		}

		a.sync(ctx)
		a.render(a.view)

		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := a.dispatch(ctx, a.view, line); quit {
			return nil
		}
	}
}

// dispatch выполняет команду; true — запрошен выход.
func (a *App) dispatch(ctx context.Context, view gate.View, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "quit", "exit":
		return true
	case "go":
		a.navigate(ctx, rest)
		return false
	case "logout":
		_ = a.sessions.Clear()
		a.navigate(ctx, "/")
		return false
	}

	switch view {
	case gate.ViewAuth:
		a.dispatchAuth(ctx, cmd, rest)
	case gate.ViewSubscription, gate.ViewSubscriptionCancel:
		if cmd == "subscribe" {
			a.subscribe(ctx)
		}
	case gate.ViewSetup:
		a.dispatchSetup(ctx, cmd, rest)
	case gate.ViewExpenses:
		a.dispatchExpenses(ctx, cmd, rest)
	case gate.ViewDashboard:
		if cmd == "refresh" {
			_ = a.dashCtl.Fetch(ctx)
		}
	case gate.ViewRecommendations:
		if cmd == "generate" {
			_ = a.recCtl.Generate(ctx)
		}
	case gate.ViewChat:
		a.dispatchChat(ctx, cmd, rest)
	}
	return false
}

func (a *App) dispatchAuth(ctx context.Context, cmd, rest string) {
	email, password, _ := strings.Cut(rest, " ")
	switch cmd {
	case "login":
		_ = a.authCtl.Submit(ctx, auth.ModeLogin, email, password)
	case "signup":
		_ = a.authCtl.Submit(ctx, auth.ModeSignup, email, password)
	}
}

func (a *App) dispatchSetup(ctx context.Context, cmd, rest string) {
	switch cmd {
	case "bank":
		a.setCtl.ToggleBank(rest)
	case "card":
		a.setCtl.ToggleCreditCard(rest)
	case "balances":
		cash, savings, _ := strings.Cut(rest, " ")
		a.setCtl.SetBalances(cash, savings)
	case "submit":
		if a.setCtl.Submit(ctx) == nil {
			a.navigate(ctx, "/dashboard")
		}
	case "skip":
		if a.setCtl.Skip(ctx) == nil {
			a.navigate(ctx, "/dashboard")
		}
	}
}

func (a *App) dispatchExpenses(ctx context.Context, cmd, rest string) {
	switch cmd {
	case "refresh":
		_ = a.expCtl.Fetch(ctx)
	case "add":
		// Поля через |: дата|категория|сумма|способ оплаты|заметка
		parts := strings.Split(rest, "|")
		if len(parts) < 4 {
			fmt.Fprintln(a.out, "usage: add date|category|amount|payment method|notes")
			return
		}
		form := expenses.Form{
			Date:          strings.TrimSpace(parts[0]),
			Category:      strings.TrimSpace(parts[1]),
			Amount:        strings.TrimSpace(parts[2]),
			PaymentMethod: strings.TrimSpace(parts[3]),
		}
		if len(parts) > 4 {
			form.Notes = strings.TrimSpace(parts[4])
		}
		_ = a.expCtl.Add(ctx, form)
	case "upload":
		file, err := os.Open(rest)
		if err != nil {
			fmt.Fprintln(a.out, "cannot open file:", err)
			return
		}
		defer file.Close()
		_ = a.expCtl.Upload(ctx, file.Name(), file)
	case "export":
		csvData, err := a.expCtl.Export(ctx)
		if err != nil {
			return
		}
		dest := rest
		if dest == "" {
			dest = "expenses.csv"
		}
		if err := os.WriteFile(dest, []byte(csvData), 0o600); err != nil {
			fmt.Fprintln(a.out, "cannot write file:", err)
			return
		}
		fmt.Fprintln(a.out, "exported to", dest)
	}
}

func (a *App) dispatchChat(ctx context.Context, cmd, rest string) {
	switch cmd {
	case "say":
		_ = a.chatCtl.Send(ctx, rest)
	case "history":
		_ = a.chatCtl.FetchHistory(ctx)
	case "load":
		items := a.chatCtl.History()
		for i, item := range items {
			if fmt.Sprint(i+1) == rest {
				a.chatCtl.LoadHistoryItem(item)
				return
			}
		}
		fmt.Fprintln(a.out, "no such history item")
	case "clear":
		a.chatCtl.Clear()
	}
}

// subscribe ведёт полный цикл оплаты: сессия оплаты, жёсткий переход
// на страницу провайдера, возврат на локальный сервер, опрос статуса
// и пауза перед переходом к настройке.
func (a *App) subscribe(ctx context.Context) {
	const op = "app.subscribe"
	log := a.log.With(slog.String("op", op))

	cb := callback.New(a.cfg.CallbackAddr, a.log)
	if err := cb.Start(); err != nil {
		log.Error("failed to start callback server", sl.Err(err))
		fmt.Fprintln(a.out, "cannot start the payment callback server:", err)
		return
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cb.Shutdown(shutdownCtx)
	}()

	url, err := a.subCtl.Subscribe(ctx, cb.OriginURL())
	if err != nil || url == "" {
		return
	}
	fmt.Fprintln(a.out, "Open this page in your browser to pay:")
	fmt.Fprintln(a.out, "  "+url)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	res, err := cb.Wait(waitCtx)
	if err != nil {
		log.Error("checkout callback not received", sl.Err(err))
		return
	}
	if res.Cancelled {
		a.navigate(ctx, "/subscription/cancel")
		return
	}

	a.navigate(ctx, "/subscription/success")
	a.render(gate.ViewSubscriptionSuccess)
	paid, err := a.subCtl.ConfirmPayment(ctx, res.SessionID)
	if err != nil || !paid {
		return
	}
	fmt.Fprintln(a.out, "Payment successful! Your subscription is now active.")
	time.Sleep(a.subCtl.ConfirmDelay())
	a.navigate(ctx, "/setup")
}

// navigate меняет запрошенный путь и сверяет показанный экран с воротами.
func (a *App) navigate(ctx context.Context, path string) {
	a.path = path
	a.sync(ctx)
}

// sync сравнивает показанный экран с решением ворот по текущей сессии.
// Смена экрана — явная навигация или мутация сессии (вход, оплата,
// настройка, сброс токена) — закрывает контроллер прежнего экрана
// (его поздние ответы будут отброшены) и загружает данные нового.
func (a *App) sync(ctx context.Context) {
	next := gate.Resolve(a.sessions.Current(), a.path)
	if next == a.view {
		return
	}
	a.closeView(a.view)
	a.view = next
	a.mount(ctx, next)
}

func (a *App) closeView(view gate.View) {
	switch view {
	case gate.ViewAuth:
		a.authCtl.Close()
	case gate.ViewSetup:
		a.setCtl.Close()
	case gate.ViewSubscription, gate.ViewSubscriptionSuccess, gate.ViewSubscriptionCancel:
		a.subCtl.Close()
	case gate.ViewExpenses:
		a.expCtl.Close()
	case gate.ViewDashboard:
		a.dashCtl.Close()
	case gate.ViewChat:
		a.chatCtl.Close()
	case gate.ViewRecommendations:
		a.recCtl.Close()
	}
}

// mount выполняет загрузку, которую экран делает при появлении.
func (a *App) mount(ctx context.Context, view gate.View) {
	switch view {
	case gate.ViewExpenses:
		_ = a.expCtl.Fetch(ctx)
	case gate.ViewDashboard:
		_ = a.dashCtl.Fetch(ctx)
	case gate.ViewChat:
		_ = a.chatCtl.FetchHistory(ctx)
	case gate.ViewRecommendations:
		a.recCtl.CheckProfile(ctx)
	}
}

// render печатает краткое состояние активного экрана.
func (a *App) render(view gate.View) {
	fmt.Fprintf(a.out, "\n[%s]\n", view)

	switch view {
	case gate.ViewAuth:
		fmt.Fprintln(a.out, "commands: login <email> <password> | signup <email> <password>")
		printMessages(a.out, a.authCtl.Error(), a.authCtl.Success())
	case gate.ViewSubscription:
		fmt.Fprintln(a.out, "FinanceFlow Pro, $29 per month. commands: subscribe")
		printMessages(a.out, a.subCtl.Error(), "")
	case gate.ViewSubscriptionSuccess:
		fmt.Fprintln(a.out, "Payment successful! Verifying your payment...")
	case gate.ViewSubscriptionCancel:
		fmt.Fprintln(a.out, "Payment cancelled. commands: subscribe")
	case gate.ViewSetup:
		fmt.Fprintln(a.out, "commands: bank <name> | card <name> | balances <cash> <savings> | submit | skip")
		printMessages(a.out, a.setCtl.Error(), a.setCtl.Success())
	case gate.ViewDashboard:
		a.renderDashboard()
	case gate.ViewExpenses:
		a.renderExpenses()
	case gate.ViewRecommendations:
		fmt.Fprintln(a.out, "commands: generate")
		if text := a.recCtl.Text(); text != "" {
			fmt.Fprintln(a.out, text)
		}
		printMessages(a.out, a.recCtl.Error(), "")
	case gate.ViewChat:
		a.renderChat()
	}
}

func (a *App) renderDashboard() {
	fmt.Fprintln(a.out, "commands: refresh")
	data := a.dashCtl.Data()
	if data == nil {
		return
	}
	fmt.Fprintf(a.out, "monthly: %.2f  total: %.2f\n", data.MonthlyExpenses, data.TotalExpenses)
	for _, p := range a.dashCtl.BalanceSeries() {
		fmt.Fprintf(a.out, "  %s: %.2f\n", p.Name, p.Value)
	}
	series := a.dashCtl.CategorySeries()
	if len(series) == 0 {
		fmt.Fprintln(a.out, "No expense data yet. Add your first expense to see the breakdown.")
	}
	for _, p := range series {
		fmt.Fprintf(a.out, "  %s: %.2f\n", p.Name, p.Value)
	}
	for _, rec := range a.dashCtl.RecentRecommendations() {
		fmt.Fprintln(a.out, "  * "+rec)
	}
}

func (a *App) renderExpenses() {
	fmt.Fprintln(a.out, "commands: refresh | add date|category|amount|payment method|notes | upload <file> | export <file>")
	for _, e := range a.expCtl.Expenses() {
		fmt.Fprintf(a.out, "  %s  %-18s %8s  %s\n", e.Date, e.Category, e.Amount.StringFixed(2), e.PaymentMethod)
	}
	fmt.Fprintf(a.out, "total: %s  average: %s\n",
		a.expCtl.Total().StringFixed(2), a.expCtl.Average().StringFixed(2))
	printMessages(a.out, a.expCtl.Error(), a.expCtl.Success())
}

func (a *App) renderChat() {
	fmt.Fprintln(a.out, "commands: say <message> | history | load <n> | clear")
	for _, m := range a.chatCtl.Messages() {
		marker := " "
		if m.IsError {
			marker = "!"
		}
		fmt.Fprintf(a.out, "%s %s: %s\n", marker, m.Role, m.Content)
	}
	for i, item := range a.chatCtl.History() {
		fmt.Fprintf(a.out, "  [%d] %s\n", i+1, item.Message)
	}
}

func printMessages(out io.Writer, errMsg, success string) {
	if errMsg != "" {
		fmt.Fprintln(out, "error:", errMsg)
	}
	if success != "" {
		fmt.Fprintln(out, success)
	}
}
