// Package web serves the user-management screen over HTTP.
//
// Every browser session owns one usermanagement.Screen, found through a
// cookie. The page subscribes to /stream, a DataStar event stream that
// re-renders the screen on every View change; buttons and inputs post to the
// /actions endpoints, which call the matching Screen method and answer 204.
// /api/view returns the current View as JSON for non-browser clients.
//
// Idle sessions are closed by Registry.Run.
package web
