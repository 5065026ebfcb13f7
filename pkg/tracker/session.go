package tracker

import "strconv"

// Session is the mutable app and display context attached to later hits.
// An empty field is not sent.
type Session struct {
	AppName          string
	AppVersion       string
	AppID            string
	AppInstallerID   string
	ScreenResolution string
	ViewportSize     string
}

// Session returns a copy of the current session context.
func (t *Tracker) Session() Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session
}

func (t *Tracker) update(f func(*Session)) Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	f(&t.session)
	return t.session
}

// SetAppName sets the application name ("an").
func (t *Tracker) SetAppName(name string) {
	t.update(func(s *Session) { s.AppName = name })
}

// SetAppVersion sets the application version ("av").
func (t *Tracker) SetAppVersion(version string) {
	t.update(func(s *Session) { s.AppVersion = version })
}

// SetAppID sets the application package or bundle id ("aid").
func (t *Tracker) SetAppID(id string) {
	t.update(func(s *Session) { s.AppID = id })
}

// SetAppInstallerID sets the installer id ("aiid"), e.g. the store the app
// was installed from.
func (t *Tracker) SetAppInstallerID(id string) {
	t.update(func(s *Session) { s.AppInstallerID = id })
}

// SetScreenResolution sets the screen resolution ("sr").
func (t *Tracker) SetScreenResolution(width, height int) {
	t.update(func(s *Session) { s.ScreenResolution = dimensions(width, height) })
}

// SetViewportSize sets the viewable area of the app window ("vp").
func (t *Tracker) SetViewportSize(width, height int) {
	t.update(func(s *Session) { s.ViewportSize = dimensions(width, height) })
}

func dimensions(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}
