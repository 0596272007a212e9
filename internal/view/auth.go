package view

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// LoginForm renders the login form. email pre-fills the email field.
func LoginForm(email string) cmp.Node {
	return g.Section(
		g.H1(cmp.Text("Log in")),
		g.Form(g.Method("post"), g.Action("/auth/login"),
			field("Email", "email", "email", email),
			field("Password", "password", "password", ""),
			g.Button(g.Type("submit"), cmp.Text("Log in")),
		),
		g.P(cmp.Text("No account yet? "), g.A(g.Href("/auth/register"), cmp.Text("Register"))),
	)
}

// RegisterForm renders the registration form.
func RegisterForm(email string) cmp.Node {
	return g.Section(
		g.H1(cmp.Text("Create an account")),
		g.Form(g.Method("post"), g.Action("/auth/register"),
			field("Name", "name", "text", ""),
			field("Email", "email", "email", email),
			field("Password", "password", "password", ""),
			g.Button(g.Type("submit"), cmp.Text("Register")),
		),
		g.P(cmp.Text("Already registered? "), g.A(g.Href("/auth/login"), cmp.Text("Log in"))),
	)
}

func field(label, name, typ, value string) cmp.Node {
	return g.Label(
		cmp.Text(label),
		g.Input(g.Name(name), g.Type(typ), g.Value(value), cmp.If(name != "name", g.Required())),
	)
}
