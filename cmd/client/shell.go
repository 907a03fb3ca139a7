package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/api"
	"github.com/atinyakov/DigitalHouse/internal/client/credential"
	"github.com/atinyakov/DigitalHouse/internal/client/home"
	"github.com/atinyakov/DigitalHouse/internal/client/media"
	"github.com/atinyakov/DigitalHouse/internal/client/nav"
	"github.com/atinyakov/DigitalHouse/internal/client/postdetail"
	"github.com/atinyakov/DigitalHouse/internal/client/profile"
	"github.com/atinyakov/DigitalHouse/internal/client/session"
	"github.com/atinyakov/DigitalHouse/internal/client/state"
	"github.com/atinyakov/DigitalHouse/internal/client/transport"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

const helpText = `Commands:
  register <name>|<email>|<mobile>|<location>|<kulam>
  login <email>            request a one-time password
  otp <code>               verify the code and sign in
  whoami | logout
  home | more | refresh    feed, next page, reload
  post <id>                open a post
  like | comment <text> | report [reason] | delete
  create <TYPE> <title>    TYPE is one of ` + "ANNOUNCEMENT, MEETUP, JOB, ..." + `
  profile | activity [my|liked|saved]
  edit <section> <field> <value>
  save                     submit edited sections
  upload <module> <path> | horoscope <path>
  locations | kulams | help | exit`

var errExit = errors.New("exit")

// shell is the interactive front end. It owns one route at a time and the
// state objects of the screens opened so far.
type shell struct {
	api    *api.API
	sess   *session.Session
	up     *media.Uploader
	images media.ImageResolver
	out    io.Writer
	log    *zap.Logger

	route  nav.Route
	home   *home.Home
	detail *postdetail.Detail
	editor *profile.Editor
	form   profile.Form
}

func newShell(a *api.API, creds *credential.Store, up *media.Uploader, apiBase string, out io.Writer, log *zap.Logger) *shell {
	return &shell{
		api:    a,
		sess:   session.New(a, creds, log),
		up:     up,
		images: media.NewImageResolver(apiBase),
		out:    out,
		log:    log,
	}
}

// Run reads commands from in until exit or EOF.
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	s.route = nav.Initial(s.sess.SignedIn(ctx))
	s.printf("[%s] type 'help' for commands\n", s.route.Screen.Title())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "dh> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := s.exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			s.fail(ctx, err)
		}
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// fail shows err and follows the route an authenticated failure leads to.
func (s *shell) fail(ctx context.Context, err error) {
	if r, ok := nav.ForError(err); ok {
		if r.Screen == nav.Login {
			s.sess.Logout(ctx)
			s.printf("Session expired. Please sign in again.\n")
		} else {
			s.printf("%s\n", transport.MessageOf(err))
		}
		s.route = r
		return
	}
	if text, ok := formMessage(err); ok {
		s.printf("%s\n", text)
		return
	}
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		s.printf("Error: %s\n", transport.UserMessage(err))
		return
	}
	s.printf("Error: %v\n", err)
}

// requireAuth applies the navigation guard to the screen a command opens.
func (s *shell) requireAuth(ctx context.Context, screen nav.Screen) bool {
	r := nav.Guard(nav.Route{Screen: screen}, s.sess.SignedIn(ctx))
	if r.Screen != screen {
		s.printf("Please sign in first: login <email>\n")
		s.route = r
		return false
	}
	return true
}

func (s *shell) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	s.log.Debug("command", zap.String("cmd", cmd))

	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "exit", "quit":
		return errExit
	case "register":
		return s.register(ctx, rest)
	case "login":
		return s.login(ctx, rest)
	case "otp":
		return s.verify(ctx, rest)
	case "whoami":
		return s.whoami(ctx)
	case "logout":
		s.sess.Logout(ctx)
		s.home, s.detail, s.editor = nil, nil, nil
		s.route = nav.Route{Screen: nav.Login}
		s.printf("Signed out.\n")
	case "locations", "kulams":
		return s.options(ctx, cmd)
	case "home", "refresh", "more":
		if !s.requireAuth(ctx, nav.Home) {
			return nil
		}
		return s.feed(ctx, cmd)
	case "post":
		if !s.requireAuth(ctx, nav.PostDetail) {
			return nil
		}
		return s.openPost(ctx, rest)
	case "like", "comment", "report", "delete":
		return s.postAction(ctx, cmd, rest)
	case "create":
		if !s.requireAuth(ctx, nav.CreatePost) {
			return nil
		}
		return s.create(ctx, rest)
	case "profile":
		if !s.requireAuth(ctx, nav.Profile) {
			return nil
		}
		return s.profile(ctx)
	case "activity":
		if !s.requireAuth(ctx, nav.Profile) {
			return nil
		}
		return s.activity(ctx, rest)
	case "edit":
		if !s.requireAuth(ctx, nav.EditProfile) {
			return nil
		}
		return s.edit(ctx, rest)
	case "save":
		return s.save(ctx)
	case "upload":
		if !s.requireAuth(ctx, nav.CreatePost) {
			return nil
		}
		return s.upload(ctx, rest)
	case "horoscope":
		if !s.requireAuth(ctx, nav.EditProfile) {
			return nil
		}
		return s.horoscope(ctx, rest)
	default:
		s.printf("Unknown command %q. Type 'help'.\n", cmd)
	}
	return nil
}

func (s *shell) register(ctx context.Context, rest string) error {
	parts := strings.Split(rest, "|")
	if len(parts) != 5 {
		s.printf("Usage: register <name>|<email>|<mobile>|<location>|<kulam>\n")
		return nil
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	reg, err := s.sess.Register(ctx, models.RegisterRequest{
		FullName: parts[0],
		Email:    parts[1],
		Mobile:   &parts[2],
		Location: &parts[3],
		Kulam:    &parts[4],
	})
	if err != nil {
		return err
	}
	s.printf("%s\n", reg.Message)
	if reg.User.Status == models.AccountPending {
		s.route = nav.Route{Screen: nav.PendingApproval}
		s.printf("[%s] You can sign in once an admin approves your account.\n", s.route.Screen.Title())
	}
	return nil
}

func (s *shell) login(ctx context.Context, rest string) error {
	email, msg, err := s.sess.RequestOTP(ctx, rest)
	var apiErr *transport.APIError
	if err != nil && !errors.As(err, &apiErr) {
		return err
	}
	if err != nil {
		r, moved := nav.ForLoginError(err)
		s.route = r
		switch {
		case moved && r.Message != "":
			s.printf("[%s] %s\n", r.Screen.Title(), r.Message)
		case moved:
			s.printf("[%s] Your account is under verification.\n", r.Screen.Title())
		default:
			s.printf("%s\n", r.Message)
		}
		return nil
	}
	s.route = nav.Route{Screen: nav.OtpVerify, Email: email}
	s.printf("%s. Enter it with: otp <code>\n", msg)
	return nil
}

func (s *shell) verify(ctx context.Context, rest string) error {
	if s.route.Screen != nav.OtpVerify || s.route.Email == "" {
		s.printf("Request a code first: login <email>\n")
		return nil
	}
	u, err := s.sess.VerifyOTP(ctx, s.route.Email, rest)
	if err != nil {
		return err
	}
	s.route = nav.Route{Screen: nav.Home}
	s.printf("Welcome, %s.\n", u.FullName)
	return nil
}

func (s *shell) whoami(ctx context.Context) error {
	if !s.sess.SignedIn(ctx) {
		s.printf("Not signed in.\n")
		return nil
	}
	u, err := s.sess.Me(ctx)
	if err != nil {
		return err
	}
	s.printf("%s <%s> %s\n", u.FullName, u.Email, u.Status)
	if info, err := s.sess.Token(ctx); err == nil && !info.ExpiresAt.IsZero() {
		s.printf("Session expires %s\n", info.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func (s *shell) options(ctx context.Context, which string) error {
	load := s.api.Locations
	if which == "kulams" {
		load = s.api.Kulams
	}
	opts, err := load(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	s.printf("%s\n", strings.Join(names, ", "))
	return nil
}

func (s *shell) feed(ctx context.Context, cmd string) error {
	first := s.home == nil
	if first {
		s.home = home.New(s.api, s.log)
	}
	s.route = nav.Route{Screen: nav.Home}

	var err error
	switch {
	case first || cmd == "home":
		err = s.home.Load(ctx)
	case cmd == "refresh":
		err = s.home.Refresh(ctx)
	default:
		if !s.home.LoadMore(ctx) {
			s.printf("No more posts.\n")
			return nil
		}
	}
	if _, ok := nav.ForError(err); ok {
		return err
	}
	s.printHome(s.home.View(), cmd == "more")
	return nil
}

func (s *shell) printHome(v home.View, feedOnly bool) {
	if !feedOnly {
		if sum := v.Summary; sum.HasData {
			s.printf("Hello, %s", sum.Data.User.Name)
			if sum.Data.UnreadNotificationsCount > 0 {
				s.printf(" (%d unread notifications)", sum.Data.UnreadNotificationsCount)
			}
			s.printf("\n")
		} else if sum.Failure != nil {
			s.printf("Summary: %s\n", sum.Failure.Message)
		}
		for _, qa := range v.QuickActions.Data {
			if qa.BadgeCount > 0 {
				s.printf("  %-18s %d\n", qa.Label, qa.BadgeCount)
			}
		}
		if hl := v.Highlights; hl.HasData {
			for _, h := range hl.Data.PinnedAnnouncements {
				s.printf("  [pinned] %s\n", h.Title)
			}
			for _, h := range hl.Data.UpcomingMeetups {
				if h.MeetupAt != nil {
					s.printf("  [meetup %s] %s\n", h.MeetupAt.Local().Format("Jan 2 15:04"), h.Title)
				}
			}
			for _, h := range hl.Data.UrgentHelpRequests {
				s.printf("  [urgent] %s\n", h.Title)
			}
		}
	}

	feed := v.Feed
	if feed.Failure != nil {
		s.printf("Feed: %s\n", feed.Failure.Message)
	}
	if !feed.HasData {
		return
	}
	for _, it := range feed.Data.Items {
		s.printf("#%-5d %-13s %s\n", it.PostID, it.PostType.Label(), it.Title)
		s.printf("       by %s, %s, %d likes, %d comments\n",
			it.Author.Name, timeAgo(it.CreatedAt, time.Now()), it.Counts.Likes, it.Counts.Comments)
	}
	s.printf("%d of %d posts\n", len(feed.Data.Items), feed.Data.Total)
}

func (s *shell) openPost(ctx context.Context, rest string) error {
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		s.printf("Usage: post <id>\n")
		return nil
	}
	s.detail = postdetail.New(s.api, id, s.log)
	s.route = nav.Route{Screen: nav.PostDetail, PostID: id}
	if err := s.detail.Load(ctx); err != nil {
		return err
	}
	s.printPost(s.detail.View())
	return nil
}

func (s *shell) printPost(v postdetail.View) {
	if !v.Post.HasData {
		return
	}
	p := v.Post.Data
	s.printf("%s | %s\n", p.PostType.Label(), p.Title)
	s.printf("by %s, %s\n", p.Author.Name, timeAgo(p.CreatedAt, time.Now()))
	if p.Description != nil {
		s.printf("\n%s\n\n", *p.Description)
	}
	if p.MediaURL != nil {
		s.printf("Media: %s\n", s.images.Resolve(*p.MediaURL))
	}
	liked := ""
	if p.LikedByMe {
		liked = " (you like this)"
	}
	s.printf("%d likes%s, %d comments\n", p.LikeCount, liked, p.CommentCount)
	for _, c := range v.Comments.Data.Items {
		s.printf("  %s: %s\n", c.Author.Name, c.Body)
	}
}

func (s *shell) postAction(ctx context.Context, cmd, rest string) error {
	if s.detail == nil || s.route.Screen != nav.PostDetail {
		s.printf("Open a post first: post <id>\n")
		return nil
	}
	switch cmd {
	case "like":
		if _, err := s.detail.ToggleLike(ctx); err != nil {
			return err
		}
	case "comment":
		if _, err := s.detail.AddComment(ctx, rest); err != nil {
			return err
		}
	case "report":
		if _, err := s.detail.Report(ctx, rest); err != nil {
			return err
		}
		s.printf("Report submitted.\n")
		return nil
	case "delete":
		u, ok := s.sess.User()
		if !ok || !s.detail.OwnedBy(u.ID) {
			s.printf("You can only delete your own posts.\n")
			return nil
		}
		if err := s.detail.Delete(ctx); err != nil {
			return err
		}
		s.detail = nil
		s.route = nav.Route{Screen: nav.Home}
		s.printf("Post deleted.\n")
		return nil
	}
	s.printPost(s.detail.View())
	return nil
}

func (s *shell) create(ctx context.Context, rest string) error {
	typ, title, _ := strings.Cut(rest, " ")
	pt := models.PostType(strings.ToUpper(typ))
	title = strings.TrimSpace(title)
	if !pt.Valid() || title == "" {
		names := make([]string, 0, len(models.PostTypes))
		for _, t := range models.PostTypes {
			names = append(names, string(t))
		}
		s.printf("Usage: create <TYPE> <title>; TYPE is one of %s\n", strings.Join(names, ", "))
		return nil
	}
	p, err := s.api.CreatePost(ctx, models.CreatePostRequest{PostType: pt, Title: title})
	if err != nil {
		return err
	}
	s.printf("Created post #%d.\n", p.ID)
	return nil
}

func (s *shell) profile(ctx context.Context) error {
	v := profile.NewViewer(s.api, s.log)
	v.Load(ctx)
	snap := v.View()
	if snap.Phase == state.Error {
		s.printf("%s\n", snap.Failure.Message)
		if snap.Failure.Status == 401 || snap.Failure.Status == 403 {
			s.route = nav.Route{Screen: nav.Login}
		}
		return nil
	}
	s.route = nav.Route{Screen: nav.Profile}
	p := snap.Data
	s.printf("%s, member since %s\n", p.Name, p.MemberSince)
	s.printf("Email %s, mobile %s\n", p.PersonalInfo.MaskedEmail, p.PersonalInfo.MaskedMobile)
	s.printf("Posts %d, jobs %d, marketplace %d, help requests %d\n",
		p.Stats.TotalPosts, p.Stats.JobsPosted, p.Stats.MarketplaceItems, p.Stats.HelpRequests)
	if p.CompletionPercentage != nil {
		s.printf("Profile %d%% complete\n", *p.CompletionPercentage)
	}
	for _, sec := range []models.SectionName{models.SectionMatrimony, models.SectionBusiness} {
		if r := p.Review(sec); r != nil {
			s.printf("%s review: %s\n", sec, r.Status)
		}
	}
	return nil
}

func (s *shell) activity(ctx context.Context, rest string) error {
	tab := models.ActivityMine
	if rest != "" {
		tab = models.ActivityTab(rest)
	}
	if !tab.Valid() {
		s.printf("Usage: activity [my|liked|saved]\n")
		return nil
	}
	a := profile.NewActivity(s.api, s.log)
	a.SetTab(ctx, tab)
	snap := a.View()
	if snap.Failure != nil {
		s.printf("%s\n", snap.Failure.Message)
	}
	if len(snap.Data.Items) == 0 {
		s.printf("Nothing here yet.\n")
	}
	for _, it := range snap.Data.Items {
		s.printf("#%-5d %-13s %-7s %s\n", it.PostID, it.PostType.Label(), it.Status, it.Title)
	}
	return nil
}

// ensureEditor loads the editor once per session of edits.
func (s *shell) ensureEditor(ctx context.Context) error {
	if s.editor != nil {
		return nil
	}
	ed := profile.NewEditor(s.api, s.up, s.log)
	form, err := ed.Load(ctx)
	if err != nil {
		return err
	}
	s.editor, s.form = ed, form
	return nil
}

func (s *shell) edit(ctx context.Context, rest string) error {
	fields := strings.SplitN(rest, " ", 3)
	if len(fields) < 3 {
		s.printf("Usage: edit <section> <field> <value>\n")
		return nil
	}
	if err := s.ensureEditor(ctx); err != nil {
		return err
	}
	section := models.SectionName(fields[0])
	if s.editor.Locked(section) {
		s.printf("The %s section is awaiting admin review.\n", section)
		return nil
	}
	if err := setField(&s.form, section, fields[1], fields[2]); err != nil {
		return err
	}
	s.route = nav.Route{Screen: nav.EditProfile}
	s.printf("%d section(s) changed. Type 'save' to submit.\n", len(s.editor.Pending(s.form)))
	return nil
}

func (s *shell) save(ctx context.Context) error {
	if s.editor == nil {
		s.printf("Nothing to save. Use: edit <section> <field> <value>\n")
		return nil
	}
	res, err := s.editor.Save(ctx, s.form)
	if err != nil {
		return err
	}
	s.printf("%s: %s\n", res.Title(), res.Message())
	if !res.NoChanges {
		s.editor = nil
		s.route = nav.Route{Screen: nav.Profile}
	}
	return nil
}

// setField writes value into one JSON field of a form section. Values that
// parse as JSON (numbers, booleans, null) keep their type; anything else is
// a string.
func setField(f *profile.Form, section models.SectionName, field, value string) error {
	var target any
	switch section {
	case models.SectionBasic:
		target = &f.Basic
	case models.SectionCommunity:
		target = &f.Community
	case models.SectionPersonal:
		target = &f.Personal
	case models.SectionMatrimony:
		target = &f.Matrimony
	case models.SectionBusiness:
		target = &f.Business
	case models.SectionFamily:
		target = &f.Family
	default:
		return fmt.Errorf("unknown section %q", section)
	}

	raw, err := json.Marshal(target)
	if err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	if _, ok := m[field]; !ok {
		return fmt.Errorf("unknown field %q in %s", field, section)
	}

	v := json.RawMessage(value)
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		v, _ = json.Marshal(value)
	} else {
		switch decoded.(type) {
		case bool, float64, string, nil:
		default:
			v, _ = json.Marshal(value)
		}
	}
	m[field] = v

	raw, err = json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%s.%s: %w", section, field, err)
	}
	return nil
}

func (s *shell) upload(ctx context.Context, rest string) error {
	module, path, _ := strings.Cut(rest, " ")
	m := models.MediaModule(module)
	if !m.Valid() || strings.TrimSpace(path) == "" {
		s.printf("Usage: upload <profile|posts|jobs|marketplace|matrimony|help> <path>\n")
		return nil
	}
	target, err := s.up.UploadFile(ctx, s.api, m, strings.TrimSpace(path), s.progress)
	if err != nil {
		return err
	}
	s.printf("Uploaded: %s\n", target.PublicURL)
	return nil
}

func (s *shell) horoscope(ctx context.Context, rest string) error {
	if rest == "" {
		s.printf("Usage: horoscope <path>\n")
		return nil
	}
	if err := s.ensureEditor(ctx); err != nil {
		return err
	}
	if s.editor.Locked(models.SectionMatrimony) {
		s.printf("The %s section is awaiting admin review.\n", models.SectionMatrimony)
		return nil
	}
	src, err := media.OpenSource(rest)
	if err != nil {
		return err
	}
	defer src.Close()
	url, err := s.editor.UploadHoroscope(ctx, src.Name, src.ContentType, src, src.Size, s.progress)
	if err != nil {
		return err
	}
	s.form.Matrimony.HoroscopeDocumentURL = &url
	s.route = nav.Route{Screen: nav.EditProfile}
	s.printf("Horoscope uploaded: %s\n", url)
	s.printf("%d section(s) changed. Type 'save' to submit.\n", len(s.editor.Pending(s.form)))
	return nil
}

func (s *shell) progress(fraction float64) {
	if fraction >= 1 {
		s.printf("Upload complete.\n")
	}
}

// timeAgo renders t relative to now the way the feed does.
func timeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Local().Format("Jan 2, 2006")
}
