package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/contact"
)

// ContactForm is the state of the contact form for one render.
type ContactForm struct {
	Values  contact.Form
	Errors  map[string]string
	Failure string
	Success bool
	Token   string
}

// ContactPage renders the contact page. After a successful submission the
// form is shown empty under the thank-you message.
func ContactPage(st State, f ContactForm) g.Node {
	return layout(st, "Contact", "Get in touch with "+st.Site.Name+".",
		pageHeader("Get In Touch", "Have a project in mind? We'd love to hear from you"),
		container(
			Div(Class("grid grid-cols-1 lg:grid-cols-2 gap-12"),
				contactForm(f),
				contactDetails(st),
			),
		),
		g.If(st.Site.MapEmbedURL != "",
			Section(Class("h-96"),
				IFrame(Src(st.Site.MapEmbedURL), Title("Office location"),
					Class("w-full h-full border-0"), g.Attr("loading", "lazy"), g.Attr("allowfullscreen", "")),
			),
		),
	)
}

func contactForm(f ContactForm) g.Node {
	v := f.Values
	if f.Success {
		v = contact.Form{}
	}
	return Div(Class("bg-white rounded-lg shadow-lg p-8"),
		H2(Class("text-3xl font-bold text-slate-900 mb-6"), g.Text("Send us a message")),
		g.If(f.Success,
			Div(Class("mb-6 p-4 rounded-lg bg-green-50 text-green-800"), Role("status"), g.Text(contact.SuccessMessage)),
		),
		g.If(f.Failure != "",
			Div(Class("mb-6 p-4 rounded-lg bg-red-50 text-red-800"), Role("alert"), g.Text(f.Failure)),
		),
		Form(Method("post"), Action("/contact"), Class("space-y-6"), g.Attr("novalidate", ""),
			Input(Type("hidden"), Name("token"), Value(f.Token)),
			field("name", "Name", "text", v.Name, true, f.Errors),
			field("email", "Email", "email", v.Email, true, f.Errors),
			field("phone", "Phone", "tel", v.Phone, false, f.Errors),
			field("subject", "Subject", "text", v.Subject, true, f.Errors),
			Div(
				Label(For("message"), Class("block text-sm font-medium text-slate-700 mb-2"), g.Text("Message *")),
				Textarea(ID("message"), Name("message"), Rows("6"), Required(),
					Class("w-full px-4 py-3 border border-slate-300 rounded-lg focus:ring-2 focus:ring-slate-900"),
					g.Text(v.Message),
				),
				fieldError("message", f.Errors),
			),
			Button(Type("submit"),
				Class("w-full bg-slate-900 text-white px-8 py-4 rounded-lg font-semibold hover:bg-slate-800 transition-colors"),
				g.Text("Send Message"),
			),
		),
	)
}

func field(name, label, typ, value string, required bool, errs map[string]string) g.Node {
	text := label
	if required {
		text += " *"
	}
	return Div(
		Label(For(name), Class("block text-sm font-medium text-slate-700 mb-2"), g.Text(text)),
		Input(ID(name), Name(name), Type(typ), Value(value), g.If(required, Required()),
			Class("w-full px-4 py-3 border border-slate-300 rounded-lg focus:ring-2 focus:ring-slate-900"),
		),
		fieldError(name, errs),
	)
}

func fieldError(name string, errs map[string]string) g.Node {
	msg, ok := errs[name]
	if !ok {
		return nil
	}
	return P(Class("mt-1 text-sm text-red-600"), g.Text(msg))
}

func contactDetails(st State) g.Node {
	block := func(title string, children ...g.Node) g.Node {
		return Div(Class("mb-8"),
			H3(Class("text-xl font-bold text-slate-900 mb-3"), g.Text(title)),
			g.Group(children),
		)
	}
	return Div(
		H2(Class("text-3xl font-bold text-slate-900 mb-6"), g.Text("Contact Information")),
		block("Address", g.Map(st.Site.Address, func(line string) g.Node {
			return P(Class("text-slate-600"), g.Text(line))
		})),
		block("Phone", P(Class("text-slate-600"), g.Text(st.Site.Phone))),
		block("Email", g.Map(st.Site.Emails, func(e string) g.Node {
			return P(A(Href("mailto:"+e), Class("text-slate-600 hover:text-slate-900"), g.Text(e)))
		})),
		block("Office Hours", g.Map(st.Site.OfficeHours, func(h config.Hours) g.Node {
			return P(Class("text-slate-600 flex justify-between"),
				Span(g.Text(h.Days)),
				Span(g.Text(h.Hours)),
			)
		})),
	)
}
