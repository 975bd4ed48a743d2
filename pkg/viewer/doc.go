// Package viewer turns viewport gestures into page navigation.
//
// # Overview
//
// A [Controller] sits between a deep-zoom rendering [Engine] and the rest of
// an application. On [Controller.Load] it lays the collection's pages out with
// the configured layout strategy, hands the placed images to the engine and
// registers one handler per engine event. From then on every gesture the
// engine reports is resolved against the placed rects and the current
// [mode.Mode], and answered with pan, zoom or fit commands.
//
// # Modes
//
// The dashboard frames the whole collection at the engine's home zoom. Page
// mode fits one page into the viewport. Gestures switch between the two:
//
//   - scrolling or pinching out on the dashboard opens the current page
//   - scrolling or pinching in on a page that fits the viewport returns to
//     the dashboard
//   - a single click on a page toggles between the modes
//   - a double click zooms into a fitted page, or fits the clicked page
//
// A drag that ends while a page is zoomed past its fit may turn the page. The
// drag's lean is resolved by [PanDirectionFor]; the controller fits the
// current page, waits [Config.AnimationTime] for that animation, then moves
// the cursor and pans to the new page at the current zoom. Any gesture that
// arrives during the wait cancels the pan.
//
// On the dashboard, or on a fitted page, a drag instead selects the page under
// the viewport center (see layout.Registry.IndexAtCenter) and centers it.
//
// # Notifications
//
// Controllers publish page changes, mode changes, canvas presses and animation
// state through [Controller.OnPageChange], [Controller.OnModeChange],
// [Controller.OnCanvasPressed] and [Controller.OnAnimating].
//
// # Threading
//
// A Controller is not safe for concurrent use. Engine callbacks, scheduled
// continuations and direct calls must all come from one goroutine; use a
// task.Scheduler whose post function delivers onto that goroutine.
package viewer
