// Package cartpole implements the nonlinear equations of motion for a cart
// carrying a pendulum, with fixed-step numerical advancement of the state.
//
// The model follows the point-mass pendulum approximation: all pendulum
// mass sits at the tip, a distance L from the pivot on the cart. State is
// the 4-vector (x, theta, xDot, thetaDot). Theta is measured from the
// hanging direction; the upright configuration theta = pi is the unstable
// equilibrium of the unforced system.
package cartpole
