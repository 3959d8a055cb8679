package pages

var Header = `<html><body>`

var Footer = `</body></html>`

var CSS = `
<style>
html {
	scroll-behavior: smooth;
}
p {
	margin: 0px 10px 0px 0px;
	color:white;
	background-color: black;
	font-family: sans-serif;
	font-size: 65px;
	font-weight: 500;
	font-style: sans;
	letter-spacing: 0px;
	text-align: center;
}
</style>`

// ScrollScript makes PageUp/PageDown move half a screen so a foot pedal can
// page through lyrics on stage.
var ScrollScript = `
<body onkeydown="scrollfunc(event)">
<script>
function scrollfunc(e) {
	let scrolldist = window.innerHeight / 2;
	if (e.key == "PageDown") {
		window.scrollBy(0, scrolldist);
		e.preventDefault();
	} else if (e.key == "PageUp") {
		window.scrollBy(0, -scrolldist);
		e.preventDefault();
	}
}
</script>`

// NotFoundAlert is formatted with a JavaScript string literal listing the
// songs that could not be found.
var NotFoundAlert = `<script>alert(%s);</script>
`
